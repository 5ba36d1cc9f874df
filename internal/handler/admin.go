package handler

import (
	"net/http"
	"runtime"
	"time"

	"warehouse-inventory-api/internal/service"
	"warehouse-inventory-api/pkg/response"
)

// Backends names the storage and coordination backends in use, for reporting.
type Backends struct {
	EventStore     string `json:"event_store"`
	ReferenceStore string `json:"reference_store"`
	Coordinator    string `json:"coordinator"`
	Publisher      string `json:"publisher"`
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	inventoryService *service.InventoryService
	backends         Backends
	startTime        time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(inventoryService *service.InventoryService, backends Backends) *AdminHandler {
	return &AdminHandler{
		inventoryService: inventoryService,
		backends:         backends,
		startTime:        time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.inventoryService.GetStats(r.Context())

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["backends"] = h.backends

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
