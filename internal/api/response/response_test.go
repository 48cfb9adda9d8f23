// internal/api/response/response_test.go
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/tradelens/internal/core"
)

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"hello": "world"}

	JSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json content type")
	}

	var resp SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil {
		t.Error("expected data in response")
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected timestamp in meta")
	}
	if resp.Meta.Count != nil {
		t.Error("expected no count for a single object")
	}
}

func TestList_NilBecomesEmpty(t *testing.T) {
	w := httptest.NewRecorder()

	List[string](w, nil)

	var resp struct {
		Data []string `json:"data"`
		Meta Meta     `json:"meta"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty list, got %v", resp.Data)
	}
	if resp.Meta.Count == nil || *resp.Meta.Count != 0 {
		t.Errorf("expected count 0, got %v", resp.Meta.Count)
	}
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.ErrInvalidQuery

	Error(w, http.StatusBadRequest, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "INVALID_QUERY" {
		t.Errorf("expected INVALID_QUERY, got %s", resp.Error.Code)
	}
}

func TestError_WithCause(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.WrapError(core.ErrTradesNotFound, errors.New("user alice"))

	Error(w, http.StatusNotFound, err)

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "TRADES_NOT_FOUND" {
		t.Errorf("expected TRADES_NOT_FOUND, got %s", resp.Error.Code)
	}
	if resp.Error.Cause != "user alice" {
		t.Errorf("expected cause, got %q", resp.Error.Cause)
	}
}

func TestError_WithStandardError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, errors.New("boom"))

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.Cause != "" {
		t.Error("plain errors should not leak a cause")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.WrapError(core.ErrInvalidQuery, nil), http.StatusBadRequest},
		{core.WrapError(core.ErrInvalidTrade, nil), http.StatusUnprocessableEntity},
		{fmt.Errorf("load: %w", core.WrapError(core.ErrTradesNotFound, nil)), http.StatusNotFound},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrStorageFailed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
