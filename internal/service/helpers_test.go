package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"famlink/internal/config"
	"famlink/internal/database"
	"famlink/internal/models"
	"famlink/internal/repository"
	"famlink/internal/security"
	"famlink/internal/testutil"
)

type testEnv struct {
	db       *database.DB
	notifier *recordingNotifier
	auth     *AuthService
	pairing  *PairingService
	children *ChildService
	notes    *NoteService
	pending  *PendingService
	activity *ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPolicy(t, config.PairingPolicyMulti, 3)
}

func newTestEnvWithPolicy(t *testing.T, policy string, freeLimit int) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	accounts := repository.NewAccountRepository(db)
	pairs := repository.NewPairingRepository(db)
	children := repository.NewChildRepository(db)
	notes := repository.NewNoteRepository(db)
	pending := repository.NewPendingRepository(db)
	activities := repository.NewActivityRepository(db)

	notifier := &recordingNotifier{}
	tokens := security.NewTokenManager("test-secret", time.Hour)

	return &testEnv{
		db:       db,
		notifier: notifier,
		auth:     NewAuthService(accounts, tokens, security.NewMemoryRevocationStore()),
		pairing:  NewPairingService(db, accounts, pairs, policy).WithNotifier(notifier),
		children: NewChildService(db, accounts, children, freeLimit),
		notes:    NewNoteService(notes, pairs),
		pending:  NewPendingService(db, accounts, pairs, children, pending).WithNotifier(notifier),
		activity: NewActivityService(children, activities),
	}
}

// register creates an account through the public sign-up path
func (e *testEnv) register(t *testing.T, name string) *models.Account {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    name + "@example.com",
		Password: "password123",
		Name:     name,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", name, err)
	}
	return res.Account
}

// pair links a and b using b's invite code
func (e *testEnv) pair(t *testing.T, a, b *models.Account) {
	t.Helper()
	if _, err := e.pairing.Pair(context.Background(), a.ID, b.InviteCode); err != nil {
		t.Fatalf("Pair(%d, %s) error = %v", a.ID, b.InviteCode, err)
	}
}

func (e *testEnv) reload(t *testing.T, id int64) *models.Account {
	t.Helper()
	a, err := e.auth.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProfile(%d) error = %v", id, err)
	}
	return a
}

type notification struct {
	kind string
	to   int64
	from int64
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyPaired(ctx context.Context, to, partner *models.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "paired", to: to.ID, from: partner.ID})
	return nil
}

func (n *recordingNotifier) NotifyPendingChange(ctx context.Context, to, proposer *models.Account, change *models.PendingChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: string(change.Action), to: to.ID, from: proposer.ID})
	return nil
}

func ids(children []models.Child) []int64 {
	out := []int64{}
	for _, c := range children {
		out = append(out, c.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
