package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"warehouse-inventory-api/internal/inventory"
	"warehouse-inventory-api/internal/model"
	"warehouse-inventory-api/internal/service"
	"warehouse-inventory-api/pkg/apierror"
	"warehouse-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// Listing pagination limits.
const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// InventoryHandler handles scan, lookup and listing requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// ScanRequest is the body of POST /api/v1/scans.
type ScanRequest struct {
	Code     string `json:"code"`
	Action   string `json:"action"`
	Location string `json:"location"`
	Pallet   string `json:"pallet"`
}

// Scan handles POST /api/v1/scans
func (h *InventoryHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	var details []apierror.FieldError
	if strings.TrimSpace(req.Code) == "" {
		details = append(details, apierror.FieldError{Field: "code", Message: "code is required"})
	}
	action, ok := model.ParseAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	if !ok {
		details = append(details, apierror.FieldError{Field: "action", Message: "must be one of CHECK_IN, MOVE, CHECK_OUT, QUERY"})
	}
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("invalid scan request", details...))
		return
	}

	result, err := h.inventoryService.Scan(r.Context(), service.ScanRequest{
		Code:     req.Code,
		Action:   action,
		Location: req.Location,
		Pallet:   req.Pallet,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if result.Event != nil {
		response.Created(w, result)
		return
	}
	response.OK(w, result)
}

// GetBox handles GET /api/v1/boxes/{code}
func (h *InventoryHandler) GetBox(w http.ResponseWriter, r *http.Request) {
	view, err := h.inventoryService.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.OK(w, view)
}

// GetBoxEvents handles GET /api/v1/boxes/{code}/events
func (h *InventoryHandler) GetBoxEvents(w http.ResponseWriter, r *http.Request) {
	res, events, err := h.inventoryService.BoxEvents(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"resolution": res,
		"events":     events,
	})
}

// ListInventory handles GET /api/v1/inventory?field=&q=&exact=&page=&limit=
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	field, ok := inventory.ParseField(q.Get("field"))
	if !ok {
		response.Error(w, apierror.ValidationError("invalid query",
			apierror.FieldError{Field: "field", Message: "must be one of ALL, ITEM_CODE, SPEC, BOX_ID"}))
		return
	}

	exact := false
	if raw := q.Get("exact"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, apierror.ValidationError("invalid query",
				apierror.FieldError{Field: "exact", Message: "must be true or false"}))
			return
		}
		exact = v
	}

	page, limit, err := parsePage(q.Get("page"), q.Get("limit"))
	if err != nil {
		response.Error(w, err)
		return
	}

	listing := h.inventoryService.ListInventory(field, q.Get("q"), exact)

	start := (page - 1) * limit
	if start > len(listing.Rows) {
		start = len(listing.Rows)
	}
	end := start + limit
	if end > len(listing.Rows) {
		end = len(listing.Rows)
	}

	response.JSONWithMeta(w, http.StatusOK, map[string]interface{}{
		"rows":       listing.Rows[start:end],
		"highlights": listing.Highlights,
	}, page, limit, int64(listing.Total))
}

func parsePage(rawPage, rawLimit string) (int, int, error) {
	page, limit := 1, defaultPageLimit

	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return 0, 0, apierror.ValidationError("invalid query",
				apierror.FieldError{Field: "page", Message: "must be a positive integer"})
		}
		page = n
	}
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > maxPageLimit {
			return 0, 0, apierror.ValidationError("invalid query",
				apierror.FieldError{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxPageLimit)})
		}
		limit = n
	}
	return page, limit, nil
}

// Occupancy handles GET /api/v1/inventory/occupancy
func (h *InventoryHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	buckets := h.inventoryService.Occupancy()

	total := 0
	for _, n := range buckets {
		total += n
	}

	response.OK(w, map[string]interface{}{
		"buckets": buckets,
		"total":   total,
	})
}
