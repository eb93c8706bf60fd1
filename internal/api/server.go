package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/notify"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

type Server struct {
	r       *chi.Mux
	manager *notify.Manager
	store   queue.Store
}

func NewServer(manager *notify.Manager, store queue.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	s := &Server{r: r, manager: manager, store: store}

	r.Get("/health", s.health)
	r.Post("/api/contacts", s.submitContact)
	r.Get("/api/notifications/status", s.queueStatus)
	r.Get("/api/notifications/{id}", s.getTask)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type contactReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	ContactType string `json:"contact_type"`
	Subject     string `json:"subject"`
}

type contactResp struct {
	NotificationStatus string          `json:"notification_status"`
	Results            map[string]bool `json:"results"`
}

// submitContact triggers notifications for an already-validated contact
// submission. The response never reflects delivery failures: notifications
// are best-effort from the client's perspective, and with the durable queue
// strategy a true result means "queued", not "delivered".
func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	results := s.manager.SendAll(r.Context(), domain.Contact{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		ContactType: req.ContactType,
		Subject:     req.Subject,
		SubmittedAt: time.Now().UTC(),
	})

	hint := "dispatched"
	if s.manager.StrategyName() == "queue" {
		hint = "queued"
	}
	out := make(map[string]bool, len(results))
	for k, v := range results {
		out[string(k)] = v
	}
	writeJSON(w, http.StatusAccepted, contactResp{NotificationStatus: hint, Results: out})
}

func (s *Server) queueStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStatus(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make(map[string]int, len(counts))
	for st, n := range counts {
		out[string(st)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": out})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := map[string]any{
		"id":            t.ID,
		"kind":          t.Kind,
		"status":        t.Status,
		"retry_count":   t.RetryCount,
		"max_retries":   t.MaxRetries,
		"error_message": t.ErrorMessage,
		"created_at":    t.CreatedAt.Format(time.RFC3339),
	}
	if t.ProcessedAt != nil {
		resp["processed_at"] = t.ProcessedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
