package handlers

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"studio/internal/domain"
	"studio/internal/storage"
	"studio/pkg/zip"

	"golang.org/x/sync/errgroup"
)

const (
	maxZipItems    = 200
	zipConcurrency = 6
)

type zipRequest struct {
	IDs  []string `json:"ids"`
	URLs []string `json:"urls"`
}

type zipSource struct {
	filename string
	url      string
	modified time.Time
}

// ImagesZip bundles the requested gallery images. Individual fetch failures
// drop that entry; the request fails only when nothing could be fetched.
func (a *App) ImagesZip(w http.ResponseWriter, r *http.Request) {
	var req zipRequest
	if !a.decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 && len(req.URLs) == 0 {
		a.error(w, http.StatusBadRequest, "ids or urls required")
		return
	}
	if len(req.IDs)+len(req.URLs) > maxZipItems {
		a.error(w, http.StatusBadRequest, "too many images, max "+strconv.Itoa(maxZipItems))
		return
	}

	sources := a.zipSources(r.Context(), req)
	assets := make([]*zip.Asset, len(sources))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(zipConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			data, err := a.fetchSource(ctx, src.url)
			if err != nil {
				a.Logger.Warn().Err(err).Str("url", src.url).Msg("zip: skip image")
				return nil
			}
			assets[i] = &zip.Asset{Filename: src.filename, Data: data, Modified: src.modified}
			return nil
		})
	}
	_ = g.Wait()

	fetched := make([]zip.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset != nil {
			fetched = append(fetched, *asset)
		}
	}
	if len(fetched) == 0 {
		a.error(w, http.StatusBadGateway, "no images could be fetched")
		return
	}
	archive, err := zip.ArchiveAssets(fetched)
	if err != nil {
		a.fail(w, r, err, "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="gallery-images.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) zipSources(ctx context.Context, req zipRequest) []zipSource {
	sources := make([]zipSource, 0, len(req.IDs)+len(req.URLs))
	for _, id := range req.IDs {
		img, err := a.Images.GetByID(ctx, id)
		if err != nil {
			a.Logger.Warn().Err(err).Str("image_id", id).Msg("zip: unknown image")
			continue
		}
		sources = append(sources, zipSource{filename: img.Filename, url: img.URL, modified: img.CreatedAt})
	}
	for _, raw := range req.URLs {
		name := path.Base(raw)
		if u, err := url.Parse(raw); err == nil {
			name = path.Base(u.Path)
		}
		sources = append(sources, zipSource{filename: name, url: raw})
	}
	return sources
}

// fetchSource reads site-relative URLs from the public dir and fetches
// absolute ones through the allow-listed client.
func (a *App) fetchSource(ctx context.Context, raw string) ([]byte, error) {
	if domain.IsRemoteURL(raw) {
		return a.Watermark.Fetch(ctx, raw)
	}
	key, err := storage.PathKey(raw)
	if err != nil {
		return nil, err
	}
	return a.Files.Read(ctx, key)
}
