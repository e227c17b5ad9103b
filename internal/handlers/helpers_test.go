package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"famlink/internal/config"
	"famlink/internal/metrics"
	"famlink/internal/models"
	"famlink/internal/repository"
	"famlink/internal/security"
	"famlink/internal/service"
	"famlink/internal/testutil"
)

type testServer struct {
	handler http.Handler
	metrics *metrics.Metrics
	status  *StartupStatus
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	accounts := repository.NewAccountRepository(db)
	pairs := repository.NewPairingRepository(db)
	children := repository.NewChildRepository(db)
	notes := repository.NewNoteRepository(db)
	pending := repository.NewPendingRepository(db)
	activities := repository.NewActivityRepository(db)

	m := metrics.New()
	limiter := security.NewRateLimiter(rateLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	authService := service.NewAuthService(accounts, security.NewTokenManager("test-secret", time.Hour), security.NewMemoryRevocationStore())
	status := NewStartupStatus()

	router := &Router{
		Middleware: NewMiddleware(authService, limiter, m),
		Auth:       NewAuthHandler(authService, nil, ""),
		Pairing:    NewPairingHandler(service.NewPairingService(db, accounts, pairs, config.PairingPolicyMulti).WithMetrics(m)),
		Children: NewChildHandler(
			service.NewChildService(db, accounts, children, 3),
			service.NewActivityService(children, activities),
		),
		Notes:   NewNoteHandler(service.NewNoteService(notes, pairs)),
		Pending: NewPendingHandler(service.NewPendingService(db, accounts, pairs, children, pending).WithMetrics(m)),
		Health:  NewHealthHandler(status, db),
		Metrics: m,
	}
	return &testServer{handler: router.Handler(), metrics: m, status: status}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// client is a registered account and its bearer token
type client struct {
	token   string
	profile models.AccountProfile
}

func (s *testServer) register(t *testing.T, name string) client {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"password": "password123",
		"name":     name,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", name, rec.Code, rec.Body)
	}
	var resp authResponse
	decodeBody(t, rec, &resp)
	return client{token: resp.Token, profile: resp.Account}
}

func (s *testServer) pair(t *testing.T, a, b client) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/pairing", a.token, map[string]string{"invite_code": b.profile.InviteCode})
	if rec.Code != http.StatusOK {
		t.Fatalf("pair: status %d, body %s", rec.Code, rec.Body)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body)
	}
}
