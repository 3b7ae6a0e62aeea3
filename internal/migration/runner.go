package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"studio/internal/domain"
	"studio/internal/gallery"
	"studio/internal/infra"
	"studio/internal/storage"
)

// GalleryPrefix is where gallery files live under the public directory.
const GalleryPrefix = "images/gallery"

const (
	JobAddLocalImages   = "add-local-images"
	JobMigrateToStorage = "migrate-to-storage"
	JobRevertToLocal    = "revert-to-local"
	JobURLSuggestions   = "url-suggestions"
	JobFixURLs          = "fix-urls"
)

// Runner executes the reconciliation jobs.
type Runner struct {
	Images  domain.ImageRepository
	Files   *storage.FileStore
	Objects storage.ObjectStore
	Logger  infra.Logger
}

func NewRunner(images domain.ImageRepository, files *storage.FileStore, objects storage.ObjectStore, logger infra.Logger) *Runner {
	if objects == nil {
		objects = storage.Disabled{}
	}
	return &Runner{Images: images, Files: files, Objects: objects, Logger: logger}
}

// AddLocalImages inserts a row for every gallery file whose filename is not
// already known. The parent directory names the category.
func (r *Runner) AddLocalImages(ctx context.Context) (*Report, error) {
	rep := newReport(JobAddLocalImages)
	err := r.Files.Walk(ctx, GalleryPrefix, func(key string, info fs.FileInfo) error {
		name := path.Base(key)
		if !gallery.IsImageFilename(name) {
			return nil
		}
		existing, err := r.Images.FindByFilename(ctx, name)
		if err != nil {
			rep.fail("", name, err)
			return nil
		}
		if len(existing) > 0 {
			rep.add(ItemResult{ID: existing[0].ID, Filename: name, Status: StatusSkipped, URL: existing[0].URL})
			return nil
		}

		data, err := r.Files.Read(ctx, key)
		if err != nil {
			rep.fail("", name, err)
			return nil
		}
		probe, err := gallery.Probe(data)
		if err != nil {
			rep.fail("", name, err)
			return nil
		}
		img := &domain.Image{
			Filename: name,
			Alt:      gallery.AltFromFilename(name),
			Category: categoryFromKey(key),
			URL:      storage.KeyPath(key),
			Width:    probe.Width,
			Height:   probe.Height,
			Size:     info.Size(),
		}
		if err := r.Images.Create(ctx, img); err != nil {
			rep.fail("", name, err)
			return nil
		}
		rep.add(ItemResult{ID: img.ID, Filename: name, Status: StatusSuccess, URL: img.URL})
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("add local images: %w", err)
	}
	r.logReport(rep)
	return rep, nil
}

// MigrateToStorage uploads every locally served image to the object store
// and points its row at the uploaded copy.
func (r *Runner) MigrateToStorage(ctx context.Context) (*Report, error) {
	if _, disabled := r.Objects.(storage.Disabled); disabled {
		return nil, storage.ErrNotConfigured
	}
	images, err := r.Images.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate to storage: %w", err)
	}
	rep := newReport(JobMigrateToStorage)
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if img.IsRemote() {
			rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSkipped, URL: img.URL})
			continue
		}
		key, err := storage.PathKey(img.URL)
		if err != nil {
			rep.fail(img.ID, img.Filename, err)
			continue
		}
		data, err := r.Files.Read(ctx, key)
		if err != nil {
			rep.fail(img.ID, img.Filename, err)
			continue
		}
		contentType := "application/octet-stream"
		if probe, err := gallery.Probe(data); err == nil {
			contentType = probe.ContentType
		}
		url, err := r.Objects.Put(ctx, ObjectKey(img.Category, img.Filename), data, contentType)
		if err != nil {
			rep.fail(img.ID, img.Filename, err)
			continue
		}
		if err := r.Images.UpdateURL(ctx, img.ID, url); err != nil {
			rep.fail(img.ID, img.Filename, err)
			continue
		}
		rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSuccess, URL: url})
	}
	r.logReport(rep)
	return rep, nil
}

// RevertToLocal points object store rows back at their local file when
// that file still exists.
func (r *Runner) RevertToLocal(ctx context.Context) (*Report, error) {
	images, err := r.Images.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("revert to local: %w", err)
	}
	index, err := r.localIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("revert to local: %w", err)
	}
	rep := newReport(JobRevertToLocal)
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !r.Objects.Owns(img.URL) {
			rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSkipped, URL: img.URL})
			continue
		}
		key, ok := index.find(img.Filename, img.Category)
		if !ok {
			rep.fail(img.ID, img.Filename, fmt.Errorf("no local file for %s", img.Filename))
			continue
		}
		local := storage.KeyPath(key)
		if err := r.Images.UpdateURL(ctx, img.ID, local); err != nil {
			rep.fail(img.ID, img.Filename, err)
			continue
		}
		rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSuccess, URL: local})
	}
	r.logReport(rep)
	return rep, nil
}

// SuggestURLs proposes a replacement for every local row whose file is
// missing. It changes nothing.
func (r *Runner) SuggestURLs(ctx context.Context) (*Report, error) {
	images, err := r.Images.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest urls: %w", err)
	}
	index, err := r.localIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest urls: %w", err)
	}
	rep := newReport(JobURLSuggestions)
	for _, img := range images {
		if img.IsRemote() {
			rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSkipped, URL: img.URL})
			continue
		}
		if key, err := storage.PathKey(img.URL); err == nil && r.Files.Exists(ctx, key) {
			rep.add(ItemResult{ID: img.ID, Filename: img.Filename, Status: StatusSkipped, URL: img.URL})
			continue
		}
		res := ItemResult{ID: img.ID, Filename: img.Filename, URL: img.URL}
		if key, ok := index.find(img.Filename, img.Category); ok {
			res.Status, res.Suggested = StatusSuccess, storage.KeyPath(key)
		} else if remote, ok := r.remoteCandidate(ctx, img); ok {
			res.Status, res.Suggested = StatusSuccess, remote
		} else {
			res.Status, res.Error = StatusFailed, "no local file or stored object found"
		}
		rep.add(res)
	}
	return rep, nil
}

// URLFix is one admin-approved URL change.
type URLFix struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ApplyURLFixes writes each fix independently.
func (r *Runner) ApplyURLFixes(ctx context.Context, fixes []URLFix) (*Report, error) {
	rep := newReport(JobFixURLs)
	for _, fix := range fixes {
		id, url := strings.TrimSpace(fix.ID), strings.TrimSpace(fix.URL)
		if id == "" || url == "" {
			rep.fail(id, "", errors.New("id and url are required"))
			continue
		}
		if err := r.Images.UpdateURL(ctx, id, url); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = errors.New("image not found")
			}
			rep.fail(id, "", err)
			continue
		}
		rep.add(ItemResult{ID: id, Status: StatusSuccess, URL: url})
	}
	r.logReport(rep)
	return rep, nil
}

func (r *Runner) remoteCandidate(ctx context.Context, img domain.Image) (string, bool) {
	if _, disabled := r.Objects.(storage.Disabled); disabled {
		return "", false
	}
	key := ObjectKey(img.Category, img.Filename)
	ok, err := r.Objects.Exists(ctx, key)
	if err != nil {
		r.Logger.Warn().Err(err).Str("key", key).Msg("object lookup failed")
		return "", false
	}
	if !ok {
		return "", false
	}
	return r.Objects.URL(key), true
}

func (r *Runner) logReport(rep *Report) {
	r.Logger.Info().
		Str("job", rep.Job).
		Int("total", rep.Summary.Total).
		Int("successful", rep.Summary.Successful).
		Int("failed", rep.Summary.Failed).
		Int("skipped", rep.Summary.Skipped).
		Msg("migration job finished")
}

// ObjectKey is where a gallery image lives in the object store.
func ObjectKey(category, filename string) string {
	return "gallery/" + gallery.Slug(category) + "/" + path.Base(filename)
}

func categoryFromKey(key string) string {
	dir := path.Base(path.Dir(key))
	if dir == "gallery" || dir == "." {
		return "Uncategorized"
	}
	return gallery.DisplayCategory(dir)
}

// fileIndex maps lowercased filenames to the gallery keys carrying them.
type fileIndex map[string][]string

func (r *Runner) localIndex(ctx context.Context) (fileIndex, error) {
	index := fileIndex{}
	err := r.Files.Walk(ctx, GalleryPrefix, func(key string, _ fs.FileInfo) error {
		name := strings.ToLower(path.Base(key))
		index[name] = append(index[name], key)
		return nil
	})
	return index, err
}

// find prefers a file whose directory matches the category slug.
func (idx fileIndex) find(filename, category string) (string, bool) {
	keys := idx[strings.ToLower(path.Base(filename))]
	if len(keys) == 0 {
		return "", false
	}
	want := gallery.Slug(category)
	for _, k := range keys {
		if gallery.Slug(path.Base(path.Dir(k))) == want {
			return k, true
		}
	}
	return keys[0], true
}
