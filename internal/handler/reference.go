package handler

import (
	"encoding/json"
	"net/http"

	"warehouse-inventory-api/internal/model"
	"warehouse-inventory-api/internal/service"
	"warehouse-inventory-api/pkg/apierror"
	"warehouse-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxReferenceBody caps a bulk load request body.
const maxReferenceBody = 32 << 20

// ReferenceHandler handles bulk loads of the reference tables.
type ReferenceHandler struct {
	inventoryService *service.InventoryService
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(inventoryService *service.InventoryService) *ReferenceHandler {
	return &ReferenceHandler{inventoryService: inventoryService}
}

// Replace handles PUT /api/v1/references/{table}
func (h *ReferenceHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, model.LoadReplace)
}

// Merge handles POST /api/v1/references/{table}
func (h *ReferenceHandler) Merge(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, model.LoadMerge)
}

// load decodes a JSON array of rows for the table named in the path.
func (h *ReferenceHandler) load(w http.ResponseWriter, r *http.Request, mode model.LoadMode) {
	table := model.ReferenceTable(chi.URLParam(r, "table"))
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReferenceBody))
	defer r.Body.Close()

	var (
		result *service.LoadResult
		err    error
	)

	switch table {
	case model.TableMappings:
		var rows []model.BoxMapping
		if err := dec.Decode(&rows); err != nil {
			response.Error(w, apierror.BadRequest("invalid mapping rows: "+err.Error()))
			return
		}
		result, err = h.inventoryService.LoadMappings(r.Context(), mode, rows)
	case model.TableItems:
		var rows []model.ItemMaster
		if err := dec.Decode(&rows); err != nil {
			response.Error(w, apierror.BadRequest("invalid item rows: "+err.Error()))
			return
		}
		result, err = h.inventoryService.LoadItems(r.Context(), mode, rows)
	case model.TableAliases:
		var rows []model.AliasEntry
		if err := dec.Decode(&rows); err != nil {
			response.Error(w, apierror.BadRequest("invalid alias rows: "+err.Error()))
			return
		}
		result, err = h.inventoryService.LoadAliases(r.Context(), mode, rows)
	default:
		response.Error(w, apierror.NotFound("unknown reference table: "+string(table)))
		return
	}

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.OK(w, result)
}
