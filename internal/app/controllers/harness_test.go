package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/repositories/memory"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/bootstrap"
	"github.com/yigit/sims/internal/config"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/pkg/queue"
	"github.com/yigit/sims/internal/pkg/websocket"
	"github.com/yigit/sims/internal/seed"
)

const testCost = 4

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingMailer struct{ links []string }

func (m *recordingMailer) SendPasswordResetEmail(_, _, resetURL string) error {
	m.links = append(m.links, resetURL)
	return nil
}

type memoryFileStore struct{ saved int }

func (s *memoryFileStore) Save(_ context.Context, dir, filename, _ string, r io.ReadSeeker, _ int64) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.saved++
	return fmt.Sprintf("/uploads/%s/%d-%s", dir, s.saved, filename), nil
}

func (s *memoryFileStore) Delete(context.Context, string) error { return nil }

// harness is the full router over a seeded in-memory store
type harness struct {
	t      *testing.T
	router *gin.Engine
	clock  *testClock
	repos  *services.Repositories
	hub    *websocket.Hub
	mailer *recordingMailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &testClock{t: time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)}
	repos := memory.NewStore().WithClock(clock.Now).Repositories()
	lgr := logger.Nop()

	err := seed.Run(context.Background(), repos, seed.Options{DemoData: true, BcryptCost: testCost, Clock: clock.Now}, lgr)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.CORSOrigins = "*"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "sims-test"
	cfg.PasswordReset.TokenExpiration = "1h"
	cfg.PasswordReset.FrontendURL = "http://frontend.test"
	cfg.Storage.Driver = config.StorageS3

	mailer := &recordingMailer{}
	infra := &bootstrap.Infrastructure{
		Repos:      repos,
		FileStore:  &memoryFileStore{},
		Mailer:     mailer,
		Clock:      clock.Now,
		BcryptCost: testCost,
	}
	hub := infra.StartHub(nil, lgr)
	infra.Publisher = queue.Fanout{queue.NopPublisher{}, hub}
	t.Cleanup(func() { infra.Close(lgr) })
	deps, err := bootstrap.BuildDependencies(cfg, infra, lgr)
	require.NoError(t, err)

	return &harness{
		t:      t,
		router: bootstrap.SetupRouter(cfg, deps, lgr),
		clock:  clock,
		repos:  repos,
		hub:    hub,
		mailer: mailer,
	}
}

func (h *harness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// upload sends content as a single multipart file part
func (h *harness) upload(method, path, token, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	partHeader.Set("Content-Type", contentType)
	part, err := w.CreatePart(partHeader)
	require.NoError(h.t, err)
	_, err = part.Write(content)
	require.NoError(h.t, err)
	require.NoError(h.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(role models.UserType, email, password string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/v1/auth/"+role.Slug()+"/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[dto.LoginResponse](h.t, rec)
	return resp.AccessToken
}

func (h *harness) adminToken() string {
	return h.login(models.UserTypeAdmin, seed.AdminEmail, seed.AdminPassword)
}

func (h *harness) teacherToken() string {
	return h.login(models.UserTypeTeacher, seed.TeacherEmail, seed.TeacherPassword)
}

func (h *harness) studentToken() string {
	return h.login(models.UserTypeStudent, seed.StudentEmail, seed.StudentPassword)
}

func (h *harness) subjectByCode(code string) *models.Subject {
	h.t.Helper()
	all, err := h.repos.Subjects.List(context.Background(), 0)
	require.NoError(h.t, err)
	for _, s := range all {
		if s.Code == code {
			return s
		}
	}
	h.t.Fatalf("subject %s not seeded", code)
	return nil
}

func (h *harness) demoStudent() *models.Student {
	h.t.Helper()
	st, err := h.repos.Students.GetByEmail(context.Background(), seed.StudentEmail)
	require.NoError(h.t, err)
	return st
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// page mirrors dto.PaginatedResponse with typed items
type page[T any] struct {
	Items      []T                `json:"items"`
	Pagination dto.PaginationInfo `json:"pagination"`
}
