// internal/api/handler/api/snapshots.go
package api

import (
	"net/http"
	"time"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/api/response"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/snapshot"
	"github.com/newthinker/tradelens/internal/storage/archive"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

// SnapshotsHandler exposes archived stats snapshots.
type SnapshotsHandler struct {
	storage archive.Storage
}

// NewSnapshotsHandler creates a snapshots handler.
func NewSnapshotsHandler(storage archive.Storage) *SnapshotsHandler {
	return &SnapshotsHandler{storage: storage}
}

// List returns the user's snapshot paths, oldest first.
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	if err := trade.ValidateUserID(user); err != nil {
		response.Fail(w, err)
		return
	}

	paths, err := snapshot.List(r.Context(), h.storage, user)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, paths)
}

// Get returns one snapshot by day and name.
func (h *SnapshotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	if err := trade.ValidateUserID(user); err != nil {
		response.Fail(w, err)
		return
	}

	day := r.PathValue("day")
	if _, err := time.Parse(analytics.DateLayout, day); err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidQuery, err))
		return
	}

	snap, err := snapshot.Load(r.Context(), h.storage, snapshot.File(user, day, r.PathValue("name")))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}
