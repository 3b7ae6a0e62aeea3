package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"studio/internal/domain"
	"studio/internal/gallery"
	"studio/internal/storage"

	"github.com/go-chi/chi/v5"
)

type imageInput struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Alt      string `json:"alt" validate:"max=500"`
	Category string `json:"category" validate:"required,max=100"`
	URL      string `json:"url" validate:"required,max=2048"`
	Width    int    `json:"width" validate:"gte=0"`
	Height   int    `json:"height" validate:"gte=0"`
	Size     int64  `json:"size" validate:"gte=0"`
}

type imagePatchInput struct {
	Alt      *string `json:"alt" validate:"omitempty,max=500"`
	Category *string `json:"category" validate:"omitempty,min=1,max=100"`
	URL      *string `json:"url" validate:"omitempty,min=1,max=2048"`
}

func (a *App) ImagesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := a.Gallery.List(r.Context(), gallery.ListParams{
		Page:     page,
		Limit:    limit,
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		a.fail(w, r, err, "failed to load images")
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) ImagesGet(w http.ResponseWriter, r *http.Request) {
	img, err := a.Images.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, "failed to load image")
		return
	}
	img.Category = gallery.DisplayCategory(img.Category)
	a.json(w, http.StatusOK, img)
}

func (a *App) ImagesCreate(w http.ResponseWriter, r *http.Request) {
	var req imageInput
	if !a.decode(w, r, &req) {
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	req.Category = strings.TrimSpace(req.Category)
	req.URL = strings.TrimSpace(req.URL)
	if err := a.Validator.Struct(req); err != nil {
		a.fail(w, r, err, "invalid image")
		return
	}
	alt := strings.TrimSpace(req.Alt)
	if alt == "" {
		alt = gallery.AltFromFilename(req.Filename)
	}
	img := &domain.Image{
		Filename: req.Filename,
		Alt:      alt,
		Category: gallery.DisplayCategory(req.Category),
		URL:      req.URL,
		Width:    req.Width,
		Height:   req.Height,
		Size:     req.Size,
	}
	if err := a.Images.Create(r.Context(), img); err != nil {
		a.fail(w, r, err, "failed to create image")
		return
	}
	a.json(w, http.StatusCreated, img)
}

func (a *App) ImagesUpdate(w http.ResponseWriter, r *http.Request) {
	var req imagePatchInput
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Validator.Struct(req); err != nil {
		a.fail(w, r, err, "invalid image")
		return
	}
	patch := domain.ImagePatch{Alt: req.Alt, URL: req.URL}
	if req.Category != nil {
		category := gallery.DisplayCategory(*req.Category)
		patch.Category = &category
	}
	img, err := a.Images.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.fail(w, r, err, "failed to update image")
		return
	}
	a.json(w, http.StatusOK, img)
}

// ImagesDelete removes the row first; the stored file or object is removed
// afterwards and a failure there is only logged.
func (a *App) ImagesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	img, err := a.Images.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load image")
		return
	}
	if err := a.Images.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err, "failed to delete image")
		return
	}
	a.removeStored(r, img)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) removeStored(r *http.Request, img *domain.Image) {
	objects := a.objectStore()
	if key, ok := objects.KeyFromURL(img.URL); ok {
		if err := objects.Delete(r.Context(), key); err != nil {
			a.Logger.Warn().Err(err).Str("image_id", img.ID).Str("url", img.URL).Msg("delete stored object")
		}
		return
	}
	if domain.IsRemoteURL(img.URL) || a.Files == nil {
		return
	}
	key, err := storage.PathKey(img.URL)
	if err != nil {
		return
	}
	if err := a.Files.Delete(r.Context(), key); err != nil {
		a.Logger.Warn().Err(err).Str("image_id", img.ID).Str("url", img.URL).Msg("delete local file")
	}
}

func (a *App) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.Gallery.Categories(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load categories")
		return
	}
	a.json(w, http.StatusOK, cats)
}
