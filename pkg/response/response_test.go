package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-inventory-api/pkg/apierror"
)

func TestError_UnwrapsAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("scan: %w", apierror.New(http.StatusConflict, "DUPLICATE_CHECK_IN", "box is already in the warehouse"))

	Error(rec, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "DUPLICATE_CHECK_IN", body.Error.Code)
}

func TestError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithMeta(rec, http.StatusOK, []string{"A1"}, 2, 50, 51)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(51), body.Meta.Total)
}
