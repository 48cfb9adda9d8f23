// internal/api/handler/api/trades.go
package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/newthinker/tradelens/internal/api/response"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/tradefile"
)

// MaxImportBytes caps the size of an import request body.
const MaxImportBytes = 10 << 20

// TradesHandler imports and removes trade records.
type TradesHandler struct {
	svc *service.Service
}

// NewTradesHandler creates a trades handler.
func NewTradesHandler(svc *service.Service) *TradesHandler {
	return &TradesHandler{svc: svc}
}

func bodyFormat(r *http.Request) tradefile.Format {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "text/csv":
		return tradefile.FormatCSV
	case "application/yaml", "application/x-yaml", "text/yaml":
		return tradefile.FormatYAML
	default:
		return tradefile.FormatJSON
	}
}

// Import stores the records in the request body. JSON is the default;
// CSV and YAML are selected by Content-Type.
func (h *TradesHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	records, err := tradefile.Decode(body, bodyFormat(r))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, core.WrapError(core.ErrInvalidTrade, err))
			return
		}
		response.Fail(w, core.WrapError(core.ErrInvalidTrade, err))
		return
	}

	result, err := h.svc.Import(r.Context(), r.PathValue("user"), records)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, result)
}

// Delete removes one record.
func (h *TradesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTrade(r.Context(), r.PathValue("user"), r.PathValue("id")); err != nil {
		response.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Users lists the users with stored trades.
func (h *TradesHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, users)
}
