package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"compressx/internal/domain"
	"compressx/internal/store"
)

// ListRecords returns persisted metadata records, newest first.
func (a *App) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := a.Records.ListRecent(r.Context(), limit, offset)
	if err != nil {
		a.respondError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, recordPayload(rec))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GetRecord returns one record by id.
func (a *App) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.respondError(w, domain.NewValidationError("record id is required"))
		return
	}
	rec, err := a.Records.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			a.error(w, http.StatusNotFound, domain.KindPersistence, "record not found")
			return
		}
		a.respondError(w, err)
		return
	}
	a.json(w, http.StatusOK, recordPayload(*rec))
}

func recordPayload(rec domain.Record) map[string]any {
	return map[string]any{
		"id":         rec.ID,
		"name":       rec.Name,
		"url":        rec.URL,
		"tags":       rec.Tags,
		"email":      rec.Email,
		"created_at": rec.CreatedAt,
	}
}
