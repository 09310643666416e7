package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/database"
	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/middleware"
	"github.com/zaqqye/salon_backoffice/internal/ws"
)

const (
	adminEmail    = "admin@salon.test"
	adminPassword = "password123"
)

type harness struct {
	t      *testing.T
	db     *gorm.DB
	cfg    *config.Config
	router *gin.Engine
	token  string
}

type harnessOption func(*config.Config)

func withLoginRate(rate string) harnessOption {
	return func(c *config.Config) { c.LoginRate = rate }
}

// newHarness wires the full router over a fresh sqlite file and signs in
// as the seeded admin.
func newHarness(t *testing.T, hub *ws.EventHub, opts ...harnessOption) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "salon.db")))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		AdminFullName: "Admin",
		LoginRate:     "1000-M",
		MetricsPath:   "/metrics",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	require.NoError(t, database.SeedAdmin(db, cfg, logger.Nop()))

	r := gin.New()
	require.NoError(t, Register(r, db, cfg, hub, logger.Nop(), middleware.NewMetrics()))

	h := &harness{t: t, db: db, cfg: cfg, router: r}
	h.token = h.login(adminEmail, adminPassword)
	return h
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	rec, body := h.doAs("", http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := body["access_token"].(string)
	require.NotEmpty(h.t, tok)
	return tok
}

func (h *harness) do(method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	return h.doAs(h.token, method, path, payload)
}

func (h *harness) doAs(token, method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(h.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.serve(req)
}

func (h *harness) upload(path, filename, content string) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(h.t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token)
	return h.serve(req)
}

func (h *harness) serve(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

// create posts payload and returns the stored record's id.
func (h *harness) create(path string, payload any) string {
	h.t.Helper()
	rec, body := h.do(http.MethodPost, path, payload)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return dataOf(h.t, body)["id"].(string)
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data object in %v", body)
	return data
}

func listOf(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	require.True(t, ok, "missing data array in %v", body)
	return data
}

func staffPayload(name, phone, aadhaar string) map[string]any {
	return map[string]any{
		"name":    name,
		"phone":   phone,
		"aadhaar": aadhaar,
		"dob":     "1994-03-12",
		"gender":  "Female",
		"salary":  "18000",
		"role":    "Stylist",
	}
}

func servicePayload(name, price string, duration int) map[string]any {
	return map[string]any{
		"name":     name,
		"price":    price,
		"duration": duration,
		"category": "Hair",
	}
}
