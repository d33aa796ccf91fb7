package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"compressx/internal/domain"
	"compressx/internal/infra"
	"compressx/internal/storage"
)

// MediaStore uploads original assets to the remote provider.
type MediaStore interface {
	Upload(ctx context.Context, asset domain.Asset, folder string) (*domain.UploadResult, error)
}

// Compressor runs the full compression workflow for one asset.
type Compressor interface {
	Compress(ctx context.Context, asset domain.Asset) (*domain.CompressionResult, error)
}

// RecordStore persists and reads metadata records.
type RecordStore interface {
	Create(ctx context.Context, record *domain.Record) error
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.Record, error)
}

// Notifier schedules the best-effort notification after record creation.
type Notifier interface {
	RecordCreated(record domain.Record)
}

// App is the handler container wiring configuration and collaborators into
// the HTTP boundary.
type App struct {
	Config     *infra.Config
	Logger     *infra.Logger
	Media      MediaStore
	Compressor Compressor
	Records    RecordStore
	Notifier   Notifier
	Files      *storage.FileStore
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind domain.ErrorKind, msg string) {
	a.json(w, code, map[string]any{"success": false, "error": string(kind), "message": msg})
}

// respondError translates taxonomy errors into HTTP responses: validation
// failures are the client's fault, everything else is reported as a server
// failure with the underlying message attached.
func (a *App) respondError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	code := http.StatusInternalServerError
	if kind == domain.KindValidation {
		code = http.StatusBadRequest
	}
	a.error(w, code, kind, domain.MessageOf(err))
}
