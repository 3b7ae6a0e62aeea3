package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"studio/internal/watermark"
)

func (a *App) Watermarked(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	out, err := a.Watermark.Render(r.Context(), raw, width)
	if err != nil {
		switch {
		case errors.Is(err, watermark.ErrInvalidURL):
			a.error(w, http.StatusBadRequest, "invalid image url")
		case errors.Is(err, watermark.ErrHostNotAllowed):
			a.error(w, http.StatusBadRequest, "image host not allowed")
		default:
			a.Logger.Error().Err(err).Str("url", raw).Msg("watermark failed")
			a.error(w, http.StatusInternalServerError, "failed to watermark image")
		}
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
