package relay

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"club-points-ledger/internal/database"
	"club-points-ledger/internal/ledger"
	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
)

type recordingSink struct {
	mu     sync.Mutex
	keys   []string
	failOn string
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, event models.PointEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Key == s.failOn {
		return errors.New("sink unavailable")
	}
	s.keys = append(s.keys, event.Key)
	return nil
}

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func setupOutbox(t *testing.T, events int) *database.Service {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewService(ctx, models.DatabaseConfig{
		Driver:          database.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "relay.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
		TxMaxAttempts:   5,
		TxRetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.CreateUser(ctx, models.User{Id: "u1"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	engine := ledger.NewEngine(true)
	for i := 0; i < events; i++ {
		err := db.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			_, err := engine.ApplyDelta(ctx, tx, "u1", 10, ledger.PostCreateKey(fmt.Sprintf("p%d", i)))
			return err
		})
		if err != nil {
			t.Fatalf("ApplyDelta failed: %v", err)
		}
	}
	return db
}

func TestDrainOnce_DeliversInOrder(t *testing.T) {
	db := setupOutbox(t, 3)
	sink := &recordingSink{}
	r := New(Config{Outbox: db, Sinks: []Sink{sink}, BatchSize: 10})

	delivered, err := r.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if delivered != 3 {
		t.Fatalf("Expected 3 delivered, got %d", delivered)
	}
	want := []string{"post:create:p0", "post:create:p1", "post:create:p2"}
	got := sink.delivered()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Delivery %d: got %s, want %s", i, got[i], want[i])
		}
	}

	remaining, _ := db.FetchOutbox(context.Background(), 10)
	if len(remaining) != 0 {
		t.Errorf("Expected empty outbox, got %d entries", len(remaining))
	}
}

func TestDrainOnce_StopsAtFailure(t *testing.T) {
	db := setupOutbox(t, 3)
	sink := &recordingSink{failOn: "post:create:p1"}
	r := New(Config{Outbox: db, Sinks: []Sink{sink}})

	delivered, err := r.DrainOnce(context.Background())
	if err == nil {
		t.Fatal("Expected sink failure")
	}
	if delivered != 1 {
		t.Errorf("Expected 1 delivered before failure, got %d", delivered)
	}

	remaining, _ := db.FetchOutbox(context.Background(), 10)
	if len(remaining) != 2 || remaining[0].Event.Key != "post:create:p1" {
		t.Fatalf("Expected p1 to stay at the head of the outbox, got %+v", remaining)
	}

	sink.failOn = ""
	if delivered, err := r.DrainOnce(context.Background()); err != nil || delivered != 2 {
		t.Errorf("Expected retry to deliver 2, got %d (%v)", delivered, err)
	}
}

func TestStartStop(t *testing.T) {
	db := setupOutbox(t, 2)
	sink := &recordingSink{}
	r := New(Config{Outbox: db, Sinks: []Sink{sink}, PollingInterval: 10 * time.Millisecond})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(sink.delivered()) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	r.Stop()

	if got := sink.delivered(); len(got) != 2 {
		t.Errorf("Expected 2 deliveries, got %v", got)
	}
}

func TestStart_RequiresSinks(t *testing.T) {
	r := New(Config{Outbox: setupOutbox(t, 0)})
	if err := r.Start(context.Background()); err == nil {
		t.Error("Expected error without sinks")
	}
	r.Stop()
}
