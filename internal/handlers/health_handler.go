package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Startup steps reported by /healthz until the server is ready
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepReady      = "Server ready"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartupStatus creates a tracker for the standard startup steps
func NewStartupStatus() *StartupStatus {
	return &StartupStatus{
		current: "Initializing...",
		steps: []StartupStep{
			{Name: StepDatabase},
			{Name: StepMigrations},
			{Name: StepServices},
			{Name: StepReady},
		},
	}
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
		}
		if s.steps[i].Completed {
			completed++
		}
	}
	s.progress = (completed * 100) / len(s.steps)
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.CompleteStep(StepReady)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = StepReady
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Pinger is satisfied by *sql.DB and *database.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status   string        `json:"status"`
	Current  string        `json:"current,omitempty"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// HealthHandler reports startup progress and database reachability
type HealthHandler struct {
	status *StartupStatus
	db     Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(status *StartupStatus, db Pinger) *HealthHandler {
	return &HealthHandler{status: status, db: db}
}

// Health responds 200 once startup has finished and the database answers a ping
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.status.IsReady() {
		h.status.mu.RLock()
		resp := healthResponse{
			Status:   "starting",
			Current:  h.status.current,
			Progress: h.status.progress,
			Steps:    append([]StartupStep(nil), h.status.steps...),
		}
		h.status.mu.RUnlock()
		respondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Progress: 100, Error: "database unreachable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Progress: 100})
}
