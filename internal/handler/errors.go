package handler

import (
	"errors"
	"log"
	"net/http"

	"warehouse-inventory-api/internal/coord"
	"warehouse-inventory-api/internal/inventory"
	"warehouse-inventory-api/internal/service"
	"warehouse-inventory-api/pkg/apierror"
	"warehouse-inventory-api/pkg/response"
)

// rejectionStatus maps a rejection code to an HTTP status.
// Malformed requests are 400; refused transitions conflict with the box's state.
func rejectionStatus(code string) int {
	switch code {
	case inventory.ErrMissingBoxID.Code, inventory.ErrMissingLocation.Code, inventory.ErrUnknownAction.Code:
		return http.StatusBadRequest
	}
	return http.StatusConflict
}

// writeServiceError converts service errors to API errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if rej, ok := inventory.AsRejection(err); ok {
		response.Error(w, apierror.New(rejectionStatus(rej.Code), rej.Code, rej.Message))
		return
	}
	if errors.Is(err, service.ErrInvalidReference) {
		response.Error(w, apierror.ValidationError(err.Error()))
		return
	}
	if errors.Is(err, coord.ErrLockTimeout) {
		response.Error(w, apierror.ServiceUnavailable("box is busy, retry shortly"))
		return
	}

	log.Printf("[Handler] %s %s failed: %v", r.Method, r.URL.Path, err)
	response.Error(w, err)
}
