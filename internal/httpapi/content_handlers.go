package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Aviat-at/mapleCMS/internal/audit"
	"github.com/Aviat-at/mapleCMS/internal/content"
	"github.com/Aviat-at/mapleCMS/internal/obs"
)

type createArticleRequest struct {
	Title string `json:"title"`
}

func (a *API) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req createArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := a.engine.Create(r.Context(), req.Title, id)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleListArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		unauthorized(w)
		return
	}
	f := content.Filter{
		OwnerID: r.URL.Query().Get("owner"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := content.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		f.Status = status
	}
	items, err := a.engine.List(r.Context(), f, id)
	if err != nil {
		writeContentError(w, err)
		return
	}
	if items == nil {
		items = []*content.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		unauthorized(w)
		return
	}
	item, err := a.engine.Get(r.Context(), r.PathValue("id"), id)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type transitionRequest struct {
	Status          string `json:"status"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (a *API) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target, err := content.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown target status")
		return
	}
	item, err := a.engine.Transition(r.Context(), r.PathValue("id"), target, req.ExpectedVersion, id)
	if err != nil {
		writeContentError(w, err)
		return
	}
	obs.ObserveTransition(string(target))
	_ = audit.LogEvent(r.Context(), "content.status_changed", map[string]any{
		"article_id": item.ID,
		"status":     string(item.Status),
		"version":    item.Version,
	})
	writeJSON(w, http.StatusOK, item)
}

// handleArticleEvents streams lifecycle transitions as server-sent events.
func (a *API) handleArticleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(r); !ok {
		unauthorized(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := a.events.Subscribe(r.Context())
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
