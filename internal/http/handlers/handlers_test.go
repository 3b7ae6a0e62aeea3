package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studio/internal/contact"
	"studio/internal/domain"
	"studio/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func (e *testEnv) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", e.app.Health)
	r.Get("/api/images", e.app.ImagesList)
	r.Get("/api/images/{id}", e.app.ImagesGet)
	r.Post("/api/images", e.app.ImagesCreate)
	r.Put("/api/images/{id}", e.app.ImagesUpdate)
	r.Delete("/api/images/{id}", e.app.ImagesDelete)
	r.Post("/api/images/zip", e.app.ImagesZip)
	r.Get("/api/categories", e.app.Categories)
	r.Post("/api/upload", e.app.Upload)
	r.Get("/api/watermark", e.app.Watermarked)
	r.Post("/api/contact", e.app.ContactSubmit)
	r.Post("/api/admin/login", e.app.AdminLogin)
	r.Get("/api/donations", e.app.DonationsList)
	r.Post("/api/donations", e.app.DonationsCreate)
	r.Put("/api/donations/{id}", e.app.DonationsUpdate)
	r.Delete("/api/donations/{id}", e.app.DonationsDelete)
	r.Post("/api/donations/import", e.app.DonationsImport)
	r.Get("/api/donations/total", e.app.DonationsTotal)
	r.Post("/api/admin/migrations/fix-urls", e.app.MigrateFixURLs)
	r.Get(OpenAPIPath, e.app.OpenAPIJSON)
	r.Get("/api/docs", e.app.OpenAPIDocs)
	return r
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDatabase(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env.app.DB = failingPinger{}
	if rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestImagesListDedupesAndKeepsRawTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, img := range []domain.Image{
		{Filename: "beach.jpg", Category: "weddings", URL: "/images/gallery/weddings/beach.jpg"},
		{Filename: "Beach.jpg", Category: "weddings", URL: "https://cdn.example.com/gallery/weddings/beach.jpg"},
		{Filename: "cap.jpg", Category: "Grad Photos", URL: "/images/gallery/grad/cap.jpg"},
		{Filename: "gown.jpg", Category: "Graduation Photos", URL: "/images/gallery/grad/gown.jpg"},
	} {
		img := img
		env.images.Create(ctx, &img)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/images?category=weddings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var page struct {
		Images []domain.Image `json:"images"`
		Total  int            `json:"total"`
	}
	decodeBody(t, rec, &page)
	if page.Total != 2 || len(page.Images) != 1 {
		t.Fatalf("total=%d images=%d, want 2 and 1", page.Total, len(page.Images))
	}
	if !strings.HasPrefix(page.Images[0].URL, "https://cdn.example.com/") {
		t.Fatalf("kept %q, want the object store copy", page.Images[0].URL)
	}
	if page.Images[0].Category != "Weddings" {
		t.Fatalf("category = %q", page.Images[0].Category)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/images?category=graduation+photos", nil))
	decodeBody(t, rec, &page)
	if len(page.Images) != 2 {
		t.Fatalf("graduation images = %d, want both spellings", len(page.Images))
	}
	for _, img := range page.Images {
		if img.Category != "Graduation Photos" {
			t.Fatalf("category = %q", img.Category)
		}
	}
}

func TestImagesGetMissing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/images/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImagesCreateValidates(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/images", `{"filename":"a.jpg"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &body)
	if body.Fields["category"] == "" || body.Fields["url"] == "" {
		t.Fatalf("fields = %v", body.Fields)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/images", `{"filename":"sunset-walk.jpg","category":"grad photos","url":"/images/gallery/grad/sunset-walk.jpg"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var img domain.Image
	decodeBody(t, rec, &img)
	if img.Category != "Graduation Photos" || img.Alt != "sunset walk" {
		t.Fatalf("created %+v", img)
	}
}

func TestUploadStoresLocallyAndDeleteRemovesFile(t *testing.T) {
	env := newTestEnv(t)
	req := multipartRequest(t, "/api/upload", "My Photo.PNG", pngBytes(t, 4, 3), map[string]string{"category": "weddings"})
	rec := env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var img domain.Image
	decodeBody(t, rec, &img)
	if img.Filename != "my-photo.png" || img.Width != 4 || img.Height != 3 || img.Category != "Weddings" {
		t.Fatalf("uploaded %+v", img)
	}
	if !strings.HasPrefix(img.URL, "/images/gallery/weddings/") || !strings.HasSuffix(img.URL, "-my-photo.png") {
		t.Fatalf("url = %q", img.URL)
	}
	key := strings.TrimPrefix(img.URL, "/")
	if !env.files.Exists(context.Background(), key) {
		t.Fatalf("file %s not written", key)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/images/"+img.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if env.files.Exists(context.Background(), key) {
		t.Fatalf("file %s still present", key)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	req := multipartRequest(t, "/api/upload", "notes.png", []byte("definitely not an image file"), map[string]string{"category": "weddings"})
	rec := env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(env.images.rows) != 0 {
		t.Fatalf("row inserted for rejected upload")
	}
}

func TestImagesZipSkipsMissingFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.files.Write(ctx, "images/gallery/weddings/a.jpg", []byte("jpeg-bytes")); err != nil {
		t.Fatalf("write: %v", err)
	}
	present := &domain.Image{Filename: "a.jpg", Category: "Weddings", URL: "/images/gallery/weddings/a.jpg"}
	missing := &domain.Image{Filename: "b.jpg", Category: "Weddings", URL: "/images/gallery/weddings/b.jpg"}
	env.images.Create(ctx, present)
	env.images.Create(ctx, missing)

	body := `{"ids":["` + present.ID + `","` + missing.ID + `","unknown"]}`
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/images/zip", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "a.jpg" {
		t.Fatalf("entries = %v", zr.File)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/images/zip", `{"ids":["`+missing.ID+`"]}`))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	rec = env.do(t, jsonRequest(http.MethodPost, "/api/images/zip", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty request status = %d", rec.Code)
	}
}

func TestWatermarkRejectsBadURLs(t *testing.T) {
	env := newTestEnv(t, "cdn.example.com")
	for _, target := range []string{
		"/api/watermark?url=ftp://cdn.example.com/a.jpg",
		"/api/watermark?url=not-a-url",
		"/api/watermark?url=https://evil.example.net/a.jpg",
	} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestWatermarkServesJPEG(t *testing.T) {
	src := pngBytes(t, 64, 48)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(src)
	}))
	defer upstream.Close()

	env := newTestEnv(t, "127.0.0.1")
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/watermark?width=32&url="+upstream.URL+"/a.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=31536000, immutable" {
		t.Fatalf("cache control = %q", rec.Header().Get("Cache-Control"))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Fatalf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func contactBody(email string) string {
	started := testNow.Add(-time.Minute).UnixMilli()
	payload, _ := json.Marshal(map[string]any{
		"name":          "Ana Lopez",
		"email":         email,
		"interested":    "no",
		"message":       "Hello, we would like to book a family session in October please.",
		"formStartedAt": started,
	})
	return string(payload)
}

func TestContactStatusCodes(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		rec := env.do(t, jsonRequest(http.MethodPost, "/api/contact", contactBody("ana@example.com")))
		if rec.Code != http.StatusOK {
			t.Fatalf("submission %d status = %d body=%s", i+1, rec.Code, rec.Body)
		}
	}
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/contact", contactBody("ANA@example.com")))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third submission status = %d", rec.Code)
	}
	var body contactResponse
	decodeBody(t, rec, &body)
	if body.Success || body.Error == "" {
		t.Fatalf("body = %+v", body)
	}
	if len(env.mailer.sent) != 2 {
		t.Fatalf("mails sent = %d", len(env.mailer.sent))
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/contact", `{"name":"A","email":"x","message":"short"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d", rec.Code)
	}

	env.mailer.err = errors.New("smtp down")
	rec = env.do(t, jsonRequest(http.MethodPost, "/api/contact", contactBody("ben@example.com")))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("delivery failure status = %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if body.Message != contact.GenericFailure {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"wrong"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}
	rec = env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"letmein"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var body adminLoginResponse
	decodeBody(t, rec, &body)
	if _, err := middleware.VerifyToken("token-secret", body.Token, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if !body.ExpiresAt.Equal(testNow.Add(middleware.AdminTokenTTL)) {
		t.Fatalf("expires_at = %v", body.ExpiresAt)
	}
}

func TestDonationsCRUDAndTotal(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/donations", `{"amount":-3,"transaction_date":"05/01/2024"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d", rec.Code)
	}
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &verr)
	for _, f := range []string{"donor_name", "amount", "payment_method", "transaction_date"} {
		if verr.Fields[f] == "" {
			t.Fatalf("missing field error for %s: %v", f, verr.Fields)
		}
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/donations", `{"donor_name":"Ana","amount":25.5,"payment_method":"Venmo","transaction_date":"2024-05-01"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}
	var created donationDTO
	decodeBody(t, rec, &created)
	if created.Amount != 25.5 || !created.CountsTowardTotal || created.TransactionDate != "2024-05-01" {
		t.Fatalf("created %+v", created)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/donations", `{"donor_name":"Ben","amount":10,"payment_method":"Cash","transaction_date":"2024-05-02","counts_toward_total":false}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/donations/total", nil))
	var total struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
	decodeBody(t, rec, &total)
	if total.Total != 25.5 || total.Count != 1 {
		t.Fatalf("total = %+v", total)
	}

	rec = env.do(t, jsonRequest(http.MethodPut, "/api/donations/"+created.ID, `{"donor_name":"Ana L","amount":30,"payment_method":"Venmo","transaction_date":"2024-05-01"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", rec.Code, rec.Body)
	}
	rec = env.do(t, jsonRequest(http.MethodPut, "/api/donations/missing", `{"donor_name":"X","amount":1,"payment_method":"Cash","transaction_date":"2024-05-01"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update missing status = %d", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/donations/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/donations?limit=9999", nil))
	var list struct {
		Donations []donationDTO `json:"donations"`
		Limit     int           `json:"limit"`
	}
	decodeBody(t, rec, &list)
	if len(list.Donations) != 1 || list.Limit != maxDonationLimit {
		t.Fatalf("list = %+v", list)
	}
}

func TestDonationsRejectAmountsThatRoundAway(t *testing.T) {
	env := newTestEnv(t)
	for _, amount := range []string{"0.004", "1e300", "10000000.01"} {
		body := `{"donor_name":"Ana","amount":` + amount + `,"payment_method":"Venmo","transaction_date":"2024-05-01"}`
		rec := env.do(t, jsonRequest(http.MethodPost, "/api/donations", body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %s: status = %d body=%s", amount, rec.Code, rec.Body)
		}
		var verr struct {
			Fields map[string]string `json:"fields"`
		}
		decodeBody(t, rec, &verr)
		if verr.Fields["amount"] == "" {
			t.Fatalf("amount %s: fields = %v", amount, verr.Fields)
		}
	}
	if len(env.donations.rows) != 0 {
		t.Fatalf("stored %d donations", len(env.donations.rows))
	}

	csv := "name,amount\nAna,0.004\nBen,1e300\nCara,12\n"
	rec := env.do(t, multipartRequest(t, "/api/donations/import", "d.csv", []byte(csv), nil))
	var res importResult
	decodeBody(t, rec, &res)
	if res.Imported != 1 || res.Failed != 2 {
		t.Fatalf("result = %+v", res)
	}
	for _, e := range res.Errors {
		if !strings.Contains(e.Error, "amount") {
			t.Fatalf("row %d error = %q", e.Row, e.Error)
		}
	}
}

func TestDonationsImportIsBestEffort(t *testing.T) {
	env := newTestEnv(t)
	env.donations.failFor = "Eve"
	csv := "\ufeffName,Amount,Method,Date,Counted,Photoshoot\n" +
		"Ana,\"$1,234.50\",Venmo,2024-03-01,yes,Family\n" +
		"Ben,abc,Cash,2024-03-02,,\n" +
		"Cara,20,,03/05/2024,no,\n" +
		",,,,,\n" +
		"Dan,15,Cash,2024-13-45,,\n" +
		"Eve,5,Cash,,,\n"
	rec := env.do(t, multipartRequest(t, "/api/donations/import", "donations.csv", []byte(csv), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var res importResult
	decodeBody(t, rec, &res)
	if res.Imported != 2 || res.Failed != 3 {
		t.Fatalf("result = %+v", res)
	}
	wantRows := []int{3, 6, 7}
	for i, e := range res.Errors {
		if e.Row != wantRows[i] {
			t.Fatalf("error %d row = %d, want %d (%s)", i, e.Row, wantRows[i], e.Error)
		}
	}

	ana, cara := env.donations.rows[0], env.donations.rows[1]
	if ana.AmountCents != 123450 || !ana.CountsTowardTotal || ana.PhotoshootType == nil || *ana.PhotoshootType != "Family" {
		t.Fatalf("ana = %+v", ana)
	}
	if cara.PaymentMethod != "other" || cara.CountsTowardTotal || cara.TransactionDate.Format(dateLayout) != "2024-03-05" {
		t.Fatalf("cara = %+v", cara)
	}
}

func TestDonationsImportNeedsColumns(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, multipartRequest(t, "/api/donations/import", "d.csv", []byte("who,what\nA,1\n"), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestParseCounted(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"Yes", true, false},
		{"x", true, false},
		{"0", false, false},
		{"No", false, false},
		{"maybe", false, true},
	}
	for _, tc := range cases {
		got, err := parseCounted(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("parseCounted(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestMigrateFixURLs(t *testing.T) {
	env := newTestEnv(t)
	img := &domain.Image{Filename: "a.jpg", Category: "Weddings", URL: "/old/a.jpg"}
	env.images.Create(context.Background(), img)

	body := `{"fixes":[{"id":"` + img.ID + `","url":"/images/gallery/weddings/a.jpg"},{"id":"ghost","url":"/x.jpg"}]}`
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/admin/migrations/fix-urls", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var report struct {
		Summary struct {
			Successful int `json:"successful"`
			Failed     int `json:"failed"`
		} `json:"summary"`
	}
	decodeBody(t, rec, &report)
	if report.Summary.Successful != 1 || report.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	if env.images.rows[0].URL != "/images/gallery/weddings/a.jpg" {
		t.Fatalf("url not updated: %q", env.images.rows[0].URL)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/admin/migrations/fix-urls", `{"fixes":[]}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty fixes status = %d", rec.Code)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, OpenAPIPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	decodeBody(t, rec, &doc)
	if doc.OpenAPI == "" || doc.Paths["/api/contact"] == nil {
		t.Fatalf("doc = %+v", doc)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, OpenAPIPath, nil)
	req.Header.Set("If-None-Match", etag)
	if rec := env.do(t, req); rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("revalidate status = %d body=%q", rec.Code, rec.Body)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if !strings.Contains(rec.Body.String(), `spec-url="`+OpenAPIPath+`"`) {
		t.Fatalf("docs page does not point at the document: %s", rec.Body)
	}
}
