package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"studio/internal/contact"
	"studio/internal/domain"
	"studio/internal/gallery"
	"studio/internal/infra"
	"studio/internal/migration"
	"studio/internal/storage"
	"studio/internal/validation"
	"studio/internal/watermark"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App carries every dependency the HTTP handlers need.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	DB         Pinger
	Images     domain.ImageRepository
	Donations  domain.DonationRepository
	Gallery    *gallery.Service
	Contact    *contact.Service
	Watermark  *watermark.Service
	Migrations *migration.Runner
	Files      *storage.FileStore
	Objects    storage.ObjectStore
	Validator  *validation.Validator
	Now        func() time.Time
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

// fail maps domain errors to a status and logs anything unexpected.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, storage.ErrNotConfigured), errors.Is(err, domain.ErrNotConfigured):
		a.error(w, http.StatusBadRequest, "object store not configured")
	case errors.Is(err, domain.ErrUpstream):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		a.error(w, http.StatusBadGateway, msg)
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		a.error(w, http.StatusInternalServerError, msg)
	}
}

const maxJSONBody = 1 << 20

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			a.error(w, http.StatusBadRequest, "request body required")
		} else {
			a.error(w, http.StatusBadRequest, "invalid payload")
		}
		return false
	}
	return true
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) objectStore() storage.ObjectStore {
	if a.Objects == nil {
		return storage.Disabled{}
	}
	return a.Objects
}

func (a *App) objectStoreEnabled() bool {
	_, disabled := a.objectStore().(storage.Disabled)
	return !disabled
}
