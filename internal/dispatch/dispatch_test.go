package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

type funcDeliverer func(kind domain.Kind, p domain.Payload) error

func (f funcDeliverer) Deliver(_ context.Context, kind domain.Kind, p domain.Payload) error {
	return f(kind, p)
}

var payload = domain.Payload{
	Name: "Jane", Email: "jane@x.com", Phone: "08012345678",
	SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
}

func TestSyncReportsDeliveryOutcome(t *testing.T) {
	ok := NewSync(funcDeliverer(func(domain.Kind, domain.Payload) error { return nil }))
	if err := ok.Dispatch(context.Background(), domain.KindAdminEmail, payload); err != nil {
		t.Errorf("sync dispatch err = %v", err)
	}

	boom := NewSync(funcDeliverer(func(domain.Kind, domain.Payload) error { return errors.New("relay down") }))
	if err := boom.Dispatch(context.Background(), domain.KindAdminEmail, payload); err == nil {
		t.Error("sync dispatch swallowed the delivery error")
	}
}

func TestThreadedFireAndForget(t *testing.T) {
	done := make(chan domain.Kind, 1)
	th := NewThreaded(funcDeliverer(func(kind domain.Kind, _ domain.Payload) error {
		done <- kind
		return nil
	}))
	th.Delay = time.Millisecond

	start := time.Now()
	if err := th.Dispatch(context.Background(), domain.KindUserEmail, payload); err != nil {
		t.Fatalf("threaded dispatch err = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("dispatch blocked for %v, should return immediately", elapsed)
	}

	select {
	case kind := <-done:
		if kind != domain.KindUserEmail {
			t.Errorf("delivered kind = %s", kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("background delivery never ran")
	}
}

func TestThreadedSwallowsFailuresAndPanics(t *testing.T) {
	ran := make(chan struct{}, 2)

	failing := NewThreaded(funcDeliverer(func(domain.Kind, domain.Payload) error {
		ran <- struct{}{}
		return errors.New("timeout")
	}))
	failing.Delay = time.Millisecond
	if err := failing.Dispatch(context.Background(), domain.KindAdminEmail, payload); err != nil {
		t.Errorf("failure surfaced from fire-and-forget dispatch: %v", err)
	}

	panicking := NewThreaded(funcDeliverer(func(domain.Kind, domain.Payload) error {
		ran <- struct{}{}
		panic("adapter bug")
	}))
	panicking.Delay = time.Millisecond
	if err := panicking.Dispatch(context.Background(), domain.KindAdminEmail, payload); err != nil {
		t.Errorf("panic surfaced from fire-and-forget dispatch: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("background unit never ran")
		}
	}
	// Give the panicking goroutine time to unwind; the test process
	// surviving is the assertion.
	time.Sleep(20 * time.Millisecond)
}

func newDurable(t *testing.T) (*Durable, queue.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dispatch.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := queue.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	store := queue.NewSQLiteStore(db)
	return NewDurable(store, 3), store
}

func TestDurableEnqueuesInsteadOfSending(t *testing.T) {
	d, store := newDurable(t)
	ctx := context.Background()

	if err := d.Dispatch(ctx, domain.KindAdminEmail, payload); err != nil {
		t.Fatalf("durable dispatch err = %v", err)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[domain.StatusPending] != 1 {
		t.Errorf("pending = %d, want 1", counts[domain.StatusPending])
	}
}

func TestDurableValidatesAtEnqueueTime(t *testing.T) {
	d, store := newDurable(t)
	ctx := context.Background()

	noPhone := payload
	noPhone.Phone = ""
	if err := d.Dispatch(ctx, domain.KindUserWhatsApp, noPhone); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}

	noName := payload
	noName.Name = ""
	if err := d.Dispatch(ctx, domain.KindAdminEmail, noName); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}

	counts, _ := store.CountByStatus(ctx)
	if counts[domain.StatusPending] != 0 {
		t.Errorf("malformed payloads reached the queue: %v", counts)
	}
}
