package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"studio/internal/contact"
	"studio/internal/domain"
	"studio/internal/gallery"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/mail"
	"studio/internal/migration"
	"studio/internal/storage"
	"studio/internal/validation"
	"studio/internal/watermark"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type memImages struct {
	mu   sync.Mutex
	rows []domain.Image
	seq  int
}

func (m *memImages) matching(q domain.ImageQuery) []domain.Image {
	var out []domain.Image
	for _, r := range m.rows {
		if len(q.Categories) > 0 {
			found := false
			for _, c := range q.Categories {
				if strings.EqualFold(c, r.Category) {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Filename+" "+r.Alt), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *memImages) List(_ context.Context, q domain.ImageQuery) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.matching(q)
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return append([]domain.Image(nil), rows...), nil
}

func (m *memImages) Count(_ context.Context, q domain.ImageQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(q)), nil
}

func (m *memImages) ListAll(context.Context) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Image(nil), m.rows...), nil
}

func (m *memImages) GetByID(_ context.Context, id string) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			img := r
			return &img, nil
		}
	}
	return nil, domain.ErrNotFound
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
	img.CreatedAt = testNow.Add(time.Duration(m.seq) * time.Minute)
	m.rows = append(m.rows, *img)
	return nil
}

func (m *memImages) Update(_ context.Context, id string, patch domain.ImagePatch) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		if patch.Alt != nil {
			m.rows[i].Alt = *patch.Alt
		}
		if patch.Category != nil {
			m.rows[i].Category = *patch.Category
		}
		if patch.URL != nil {
			m.rows[i].URL = *patch.URL
		}
		img := m.rows[i]
		return &img, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memImages) UpdateURL(ctx context.Context, id, url string) error {
	_, err := m.Update(ctx, id, domain.ImagePatch{URL: &url})
	return err
}

func (m *memImages) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memImages) Categories(context.Context) ([]domain.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	var order []string
	for _, r := range m.rows {
		if counts[r.Category] == 0 {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}
	out := make([]domain.CategoryCount, 0, len(order))
	for _, c := range order {
		out = append(out, domain.CategoryCount{Category: c, Count: counts[c]})
	}
	return out, nil
}

type memDonations struct {
	mu      sync.Mutex
	rows    []domain.Donation
	seq     int
	failFor string
}

func (m *memDonations) List(_ context.Context, limit, offset int) ([]domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.rows) {
		return nil, nil
	}
	rows := m.rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return append([]domain.Donation(nil), rows...), nil
}

func (m *memDonations) GetByID(_ context.Context, id string) (*domain.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.ID == id {
			out := d
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memDonations) Create(_ context.Context, d *domain.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor != "" && d.DonorName == m.failFor {
		return errors.New("insert failed")
	}
	m.seq++
	d.ID = fmt.Sprintf("don-%d", m.seq)
	d.CreatedAt, d.UpdatedAt = testNow, testNow
	m.rows = append(m.rows, *d)
	return nil
}

func (m *memDonations) Update(_ context.Context, d *domain.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == d.ID {
			d.UpdatedAt = testNow.Add(time.Hour)
			m.rows[i] = *d
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memDonations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memDonations) Totals(context.Context) (domain.DonationTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t domain.DonationTotals
	for _, d := range m.rows {
		if d.CountsTowardTotal {
			t.TotalCents += d.AmountCents
			t.Count++
		}
	}
	return t, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type noGeo struct{}

func (noGeo) Country(string) (geoip.Country, error) { return geoip.Country{}, geoip.ErrUnavailable }

type testEnv struct {
	app       *App
	images    *memImages
	donations *memDonations
	mailer    *recordingMailer
	files     *storage.FileStore
}

func newTestEnv(t *testing.T, allowHosts ...string) *testEnv {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	marker, err := watermark.New(watermark.Config{Text: "Studio", Allowlist: allowHosts})
	if err != nil {
		t.Fatalf("watermark.New: %v", err)
	}
	images := &memImages{}
	donations := &memDonations{}
	mailer := &recordingMailer{}
	logger := infra.NopLogger()

	svc := contact.NewService(contact.NewFilter(), mailer, noGeo{}, "owner@example.com", logger)
	svc.Now = func() time.Time { return testNow }

	app := &App{
		Config: &infra.Config{
			AdminPassword:    "letmein",
			AdminTokenSecret: "token-secret",
			RateLimitPerMin:  1000,
		},
		Logger:     logger,
		Images:     images,
		Donations:  donations,
		Gallery:    gallery.NewService(images, nil),
		Contact:    svc,
		Watermark:  marker,
		Migrations: migration.NewRunner(images, files, nil, logger),
		Files:      files,
		Validator:  validation.New(),
		Now:        func() time.Time { return testNow },
	}
	return &testEnv{app: app, images: images, donations: donations, mailer: mailer, files: files}
}
