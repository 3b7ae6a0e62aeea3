package handlers

import (
	"context"
	"net/http"

	"studio/internal/migration"
)

type urlFixRequest struct {
	Fixes []migration.URLFix `json:"fixes"`
}

func (a *App) runJob(w http.ResponseWriter, r *http.Request, job func(context.Context) (*migration.Report, error)) {
	report, err := job(r.Context())
	if err != nil {
		a.fail(w, r, err, "migration job failed")
		return
	}
	a.json(w, http.StatusOK, report)
}

func (a *App) MigrateAddLocal(w http.ResponseWriter, r *http.Request) {
	a.runJob(w, r, a.Migrations.AddLocalImages)
}

func (a *App) MigrateToStorage(w http.ResponseWriter, r *http.Request) {
	a.runJob(w, r, a.Migrations.MigrateToStorage)
}

func (a *App) MigrateRevert(w http.ResponseWriter, r *http.Request) {
	a.runJob(w, r, a.Migrations.RevertToLocal)
}

func (a *App) MigrateSuggestions(w http.ResponseWriter, r *http.Request) {
	a.runJob(w, r, a.Migrations.SuggestURLs)
}

func (a *App) MigrateFixURLs(w http.ResponseWriter, r *http.Request) {
	var req urlFixRequest
	if !a.decode(w, r, &req) {
		return
	}
	if len(req.Fixes) == 0 {
		a.error(w, http.StatusBadRequest, "fixes required")
		return
	}
	a.runJob(w, r, func(ctx context.Context) (*migration.Report, error) {
		return a.Migrations.ApplyURLFixes(ctx, req.Fixes)
	})
}
