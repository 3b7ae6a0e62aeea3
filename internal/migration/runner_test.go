package migration

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/storage"
)

type memImages struct {
	domain.ImageRepository
	mu   sync.Mutex
	rows []domain.Image
	seq  int
}

func (m *memImages) ListAll(context.Context) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Image(nil), m.rows...), nil
}

func (m *memImages) FindByFilename(_ context.Context, name string) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Image
	for _, r := range m.rows {
		if strings.EqualFold(r.Filename, name) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memImages) Create(_ context.Context, img *domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	img.ID = fmt.Sprintf("img-%d", m.seq)
	img.CreatedAt = time.Now()
	m.rows = append(m.rows, *img)
	return nil
}

func (m *memImages) UpdateURL(_ context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].URL = url
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memImages) byID(id string) domain.Image {
	for _, r := range m.rows {
		if r.ID == id {
			return r
		}
	}
	return domain.Image{}
}

type memObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

const cdn = "https://cdn.example.com/"

func (o *memObjects) Put(_ context.Context, key string, data []byte, ct string) (string, error) {
	o.objects[key] = data
	o.types[key] = ct
	return cdn + key, nil
}

func (o *memObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := o.objects[key]
	return ok, nil
}

func (o *memObjects) Delete(_ context.Context, key string) error {
	delete(o.objects, key)
	return nil
}

func (o *memObjects) URL(key string) string { return cdn + key }
func (o *memObjects) Owns(u string) bool    { return strings.HasPrefix(u, cdn) }
func (o *memObjects) KeyFromURL(u string) (string, bool) {
	if !o.Owns(u) {
		return "", false
	}
	return strings.TrimPrefix(u, cdn), true
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 8))))
	return buf.Bytes()
}

func newFixture(t *testing.T) (*Runner, *memImages, *memObjects, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	images := &memImages{}
	objects := newMemObjects()
	return NewRunner(images, files, objects, infra.NopLogger()), images, objects, files
}

func TestAddLocalImagesIsIdempotent(t *testing.T) {
	r, images, _, files := newFixture(t)
	ctx := context.Background()
	data := pngData(t)
	_, err := files.Write(ctx, "images/gallery/weddings/first-dance.png", data)
	require.NoError(t, err)
	_, err = files.Write(ctx, "images/gallery/portraits/studio.png", data)
	require.NoError(t, err)
	_, err = files.Write(ctx, "images/gallery/portraits/notes.txt", []byte("skip me"))
	require.NoError(t, err)

	rep, err := r.AddLocalImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Successful: 2}, rep.Summary)

	row := images.rows[1]
	assert.Equal(t, "first-dance.png", row.Filename)
	assert.Equal(t, "Weddings", row.Category)
	assert.Equal(t, "first dance", row.Alt)
	assert.Equal(t, "/images/gallery/weddings/first-dance.png", row.URL)
	assert.Equal(t, 12, row.Width)
	assert.Equal(t, 8, row.Height)
	assert.Equal(t, int64(len(data)), row.Size)

	again, err := r.AddLocalImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Skipped: 2}, again.Summary)
	assert.Len(t, images.rows, 2)
}

func TestMigrateToStorageRecordsMissingFileAndContinues(t *testing.T) {
	r, images, objects, files := newFixture(t)
	ctx := context.Background()
	data := pngData(t)
	for _, name := range []string{"a.png", "c.png"} {
		_, err := files.Write(ctx, "images/gallery/weddings/"+name, data)
		require.NoError(t, err)
	}
	images.rows = []domain.Image{
		{ID: "1", Filename: "a.png", Category: "Weddings", URL: "/images/gallery/weddings/a.png"},
		{ID: "2", Filename: "b.png", Category: "Weddings", URL: "/images/gallery/weddings/b.png"},
		{ID: "3", Filename: "c.png", Category: "Weddings", URL: "/images/gallery/weddings/c.png"},
		{ID: "4", Filename: "d.png", Category: "Weddings", URL: cdn + "gallery/weddings/d.png"},
	}

	rep, err := r.MigrateToStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 4, Successful: 2, Failed: 1, Skipped: 1}, rep.Summary)
	assert.Equal(t, StatusFailed, rep.Results[1].Status)
	assert.NotEmpty(t, rep.Results[1].Error)

	assert.Equal(t, cdn+"gallery/weddings/a.png", images.byID("1").URL)
	assert.Equal(t, "/images/gallery/weddings/b.png", images.byID("2").URL)
	assert.Equal(t, cdn+"gallery/weddings/c.png", images.byID("3").URL)
	assert.Equal(t, "image/png", objects.types["gallery/weddings/a.png"])

	_, err = files.Write(ctx, "images/gallery/weddings/b.png", data)
	require.NoError(t, err)
	rerun, err := r.MigrateToStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 4, Successful: 1, Skipped: 3}, rerun.Summary)
}

func TestMigrateToStorageNeedsObjectStore(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(&memImages{}, files, nil, infra.NopLogger())
	_, err = r.MigrateToStorage(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestRevertToLocal(t *testing.T) {
	r, images, _, files := newFixture(t)
	ctx := context.Background()
	_, err := files.Write(ctx, "images/gallery/grad-photos/cap.png", pngData(t))
	require.NoError(t, err)
	images.rows = []domain.Image{
		{ID: "1", Filename: "cap.png", Category: "Grad Photos", URL: cdn + "gallery/grad-photos/cap.png"},
		{ID: "2", Filename: "gown.png", Category: "Grad Photos", URL: cdn + "gallery/grad-photos/gown.png"},
		{ID: "3", Filename: "x.png", Category: "Weddings", URL: "/images/gallery/weddings/x.png"},
	}

	rep, err := r.RevertToLocal(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Successful: 1, Failed: 1, Skipped: 1}, rep.Summary)
	assert.Equal(t, "/images/gallery/grad-photos/cap.png", images.byID("1").URL)
	assert.Equal(t, cdn+"gallery/grad-photos/gown.png", images.byID("2").URL)
}

func TestSuggestURLsIsReadOnly(t *testing.T) {
	r, images, objects, files := newFixture(t)
	ctx := context.Background()
	_, err := files.Write(ctx, "images/gallery/portraits/moved.png", pngData(t))
	require.NoError(t, err)
	_, err = files.Write(ctx, "images/gallery/portraits/fine.png", pngData(t))
	require.NoError(t, err)
	objects.objects["gallery/portraits/uploaded.png"] = []byte("x")

	images.rows = []domain.Image{
		{ID: "1", Filename: "moved.png", Category: "Portraits", URL: "/images/old/moved.png"},
		{ID: "2", Filename: "uploaded.png", Category: "Portraits", URL: "/images/old/uploaded.png"},
		{ID: "3", Filename: "lost.png", Category: "Portraits", URL: "/images/old/lost.png"},
		{ID: "4", Filename: "fine.png", Category: "Portraits", URL: "/images/gallery/portraits/fine.png"},
		{ID: "5", Filename: "remote.png", Category: "Portraits", URL: cdn + "gallery/portraits/remote.png"},
	}

	rep, err := r.SuggestURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 5, Successful: 2, Failed: 1, Skipped: 2}, rep.Summary)
	assert.Equal(t, "/images/gallery/portraits/moved.png", rep.Results[0].Suggested)
	assert.Equal(t, cdn+"gallery/portraits/uploaded.png", rep.Results[1].Suggested)
	assert.Equal(t, "/images/old/moved.png", images.byID("1").URL)
}

func TestApplyURLFixes(t *testing.T) {
	r, images, _, _ := newFixture(t)
	images.rows = []domain.Image{{ID: "1", Filename: "a.png", URL: "/old/a.png"}}

	rep, err := r.ApplyURLFixes(context.Background(), []URLFix{
		{ID: "1", URL: "/images/gallery/a.png"},
		{ID: "missing", URL: "/x.png"},
		{ID: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Successful: 1, Failed: 2}, rep.Summary)
	assert.Equal(t, "image not found", rep.Results[1].Error)
	assert.Equal(t, "/images/gallery/a.png", images.byID("1").URL)
}
