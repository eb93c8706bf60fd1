package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/dispatch"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/notify"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.db")
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
	manager := notify.NewManager(dispatch.NewDurable(store, 3), notify.Flags{
		EmailNotifications: true, UserConfirmations: true, WhatsAppEnabled: true,
	})
	return NewServer(manager, store)
}

const contactJSON = `{
	"name": "Jane Doe",
	"email": "jane@x.com",
	"phone": "08012345678",
	"message": "Interested in the villa",
	"contact_type": "property_inquiry"
}`

func TestSubmitContactQueuesNotifications(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(contactJSON))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		NotificationStatus string          `json:"notification_status"`
		Results            map[string]bool `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NotificationStatus != "queued" {
		t.Errorf("notification_status = %q, want queued", resp.NotificationStatus)
	}
	if len(resp.Results) != 4 {
		t.Errorf("results = %v, want 4 kinds", resp.Results)
	}
	for kind, ok := range resp.Results {
		if !ok {
			t.Errorf("kind %s = false", kind)
		}
	}

	// The hint means queued, not delivered: the tasks must all be pending.
	statusReq := httptest.NewRequest(http.MethodGet, "/api/notifications/status", nil)
	statusRec := httptest.NewRecorder()
	srv.ServeHTTP(statusRec, statusReq)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", statusRec.Code)
	}
	var status struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(statusRec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Counts["pending"] != 4 {
		t.Errorf("pending = %d, want 4", status.Counts["pending"])
	}
	if status.Counts["completed"] != 0 {
		t.Errorf("completed = %d, want 0", status.Counts["completed"])
	}
}

func TestSubmitContactValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []string{
		`{"email":"jane@x.com"}`,
		`{"name":"Jane"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestGetTaskNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/ntf_missing", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health = %d, want 200", rec.Code)
	}
}
