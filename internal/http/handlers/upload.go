package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"studio/internal/domain"
	"studio/internal/gallery"
	"studio/internal/migration"
	"studio/internal/storage"

	"github.com/google/uuid"
)

const maxUploadBytes = 20 << 20

// Upload accepts a multipart image (fields file, category, alt), stores it
// in the bucket when one is configured and otherwise under the public dir,
// then inserts the gallery row.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "file exceeds 20MB")
			return
		}
		a.error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "file exceeds 20MB")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > maxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "file exceeds 20MB")
		return
	}
	info, err := gallery.Probe(data)
	if err != nil {
		if errors.Is(err, gallery.ErrNotImage) {
			a.error(w, http.StatusBadRequest, "file must be an image")
			return
		}
		a.error(w, http.StatusBadRequest, "unreadable image")
		return
	}

	category := gallery.DisplayCategory(strings.TrimSpace(r.FormValue("category")))
	if category == "" {
		a.error(w, http.StatusBadRequest, "category is required")
		return
	}
	filename := gallery.SafeFilename(header.Filename, info.Extension)
	stored := uuid.NewString() + "-" + filename

	var url string
	if a.objectStoreEnabled() {
		url, err = a.objectStore().Put(r.Context(), migration.ObjectKey(category, stored), data, info.ContentType)
		if err != nil {
			a.fail(w, r, err, "failed to store image")
			return
		}
	} else {
		key := path.Join(migration.GalleryPrefix, gallery.Slug(category), stored)
		if _, err := a.Files.Write(r.Context(), key, data); err != nil {
			a.fail(w, r, err, "failed to store image")
			return
		}
		url = storage.KeyPath(key)
	}

	alt := strings.TrimSpace(r.FormValue("alt"))
	if alt == "" {
		alt = gallery.AltFromFilename(filename)
	}
	img := &domain.Image{
		Filename: filename,
		Alt:      alt,
		Category: category,
		URL:      url,
		Width:    info.Width,
		Height:   info.Height,
		Size:     int64(len(data)),
	}
	if err := a.Images.Create(r.Context(), img); err != nil {
		a.fail(w, r, err, "failed to save image")
		return
	}
	a.Logger.Info().Str("image_id", img.ID).Str("url", url).Int64("size", img.Size).Msg("image uploaded")
	a.json(w, http.StatusCreated, img)
}
