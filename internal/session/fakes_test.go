package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/daily"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/payment"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

type fakeStats struct {
	mu      sync.Mutex
	users   map[string]store.User
	results chan store.Result
	board   store.Leaderboard
}

func newFakeStats() *fakeStats {
	return &fakeStats{users: map[string]store.User{}, results: make(chan store.Result, 64)}
}

func (f *fakeStats) EnsureUser(ctx context.Context, u store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		f.users[u.ID] = u
	}
	return nil
}

func (f *fakeStats) GetUser(ctx context.Context, id string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStats) SetDisplayName(ctx context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.DisplayName = name
	f.users[id] = u
	return nil
}

func (f *fakeStats) SetHandle(ctx context.Context, id string, handle *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Handle = handle
	f.users[id] = u
	return nil
}

func (f *fakeStats) RecordResult(ctx context.Context, r store.Result) error {
	f.results <- r
	return nil
}

func (f *fakeStats) Leaderboard(ctx context.Context, userID string) (store.Leaderboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.board, nil
}

func (f *fakeStats) user(id string) store.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

type fakeGateway struct {
	mu         sync.Mutex
	customers  map[string]string // email -> id
	created    int
	checkouts  map[string]bool // id -> paid
	order      []string
	paidChecks []string
	entered    chan struct{}
	block      chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{customers: map[string]string{}, checkouts: map[string]bool{}}
}

func (g *fakeGateway) FindCustomer(ctx context.Context, email string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.customers[email]
	return id, ok, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	id := fmt.Sprintf("cus_%d", g.created)
	g.customers[email] = id
	return id, nil
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, customerID string) (payment.Checkout, error) {
	if g.block != nil {
		g.entered <- struct{}{}
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("cs_%d", len(g.order)+1)
	g.checkouts[id] = false
	g.order = append(g.order, id)
	return payment.Checkout{ID: id, URL: "https://pay.example/" + id}, nil
}

func (g *fakeGateway) CheckoutPaid(ctx context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paidChecks = append(g.paidChecks, id)
	return g.checkouts[id], nil
}

func (g *fakeGateway) pay(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts[id] = true
}

func (g *fakeGateway) checkoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

type fakeHints struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
}

func (f *fakeHints) GenerateHint(ctx context.Context, word string, prior []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return fmt.Sprintf("generic hint %d", i), nil
}

type harness struct {
	reg     *Registry
	ledger  *daily.MemoryLedger
	states  store.StateStore
	stats   *fakeStats
	gateway *fakeGateway
	hints   *fakeHints
	bg      *Background
}

func newHarness(t *testing.T, idle time.Duration) *harness {
	t.Helper()
	h := &harness{
		ledger:  daily.NewMemoryLedger(daily.Entry{GameID: "g1", Date: "2025-01-01", Word: "crane"}),
		states:  store.NewMemoryStore(),
		stats:   newFakeStats(),
		gateway: newFakeGateway(),
		hints:   &fakeHints{},
		bg:      NewBackground(2, 16, nil),
	}
	h.reg = NewRegistry(Config{
		Ledger:      h.ledger,
		States:      h.states,
		Stats:       h.stats,
		Payments:    h.gateway,
		Hints:       h.hints,
		Background:  h.bg,
		IdleTimeout: idle,
	})
	t.Cleanup(func() {
		h.reg.Close()
		h.bg.Close()
	})
	return h
}

func (h *harness) initUser(t *testing.T, id string) {
	t.Helper()
	if err := h.reg.Init(context.Background(), Identity{UserID: id, Email: id + "@example.com"}); err != nil {
		t.Fatalf("Init(%s): %v", id, err)
	}
}

func (h *harness) rotate(t *testing.T, e daily.Entry) {
	t.Helper()
	if err := h.ledger.Append(context.Background(), e); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

// settle drains the background pool and returns every recorded result.
func (h *harness) settle() []store.Result {
	h.bg.Close()
	var out []store.Result
	for {
		select {
		case r := <-h.stats.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

func (h *harness) saved(t *testing.T, id string) *store.State {
	t.Helper()
	s, err := h.states.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return s
}

func mustText(t *testing.T, text string, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return text
}

var errOracleDown = errors.New("oracle down")
