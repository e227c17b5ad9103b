package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestStartupStatusProgress(t *testing.T) {
	status := NewStartupStatus()
	status.CompleteStep(StepDatabase)
	status.CompleteStep(StepMigrations)

	if status.progress != 50 {
		t.Errorf("progress = %d, want 50", status.progress)
	}
	if status.IsReady() {
		t.Error("should not be ready yet")
	}

	status.MarkReady()
	if !status.IsReady() || status.progress != 100 {
		t.Errorf("after MarkReady ready=%v progress=%d", status.IsReady(), status.progress)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		pingErr    error
		wantStatus int
	}{
		{name: "starting", ready: false, wantStatus: http.StatusServiceUnavailable},
		{name: "ready", ready: true, wantStatus: http.StatusOK},
		{name: "database down", ready: true, pingErr: errors.New("gone"), wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewStartupStatus()
			if tt.ready {
				status.MarkReady()
			}
			h := NewHealthHandler(status, fakePinger{err: tt.pingErr})

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.status.MarkReady()

	expectStatus(t, srv.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)

	rec := srv.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "famlink_http_requests_total") {
		t.Error("metrics output missing famlink_http_requests_total")
	}
}
