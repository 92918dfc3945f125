// Package server is the read-only admin API: health, monitored accounts,
// generated content and live review sessions.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/review"
	"marks-content-agent/internal/store"
)

type Server struct {
	router   *chi.Mux
	database *db.DB
	accounts *store.AccountStore
	content  *store.ContentStore
	feedback *store.FeedbackStore
	registry *review.Registry
}

func NewServer(allowedOrigin string, database *db.DB, accounts *store.AccountStore,
	content *store.ContentStore, feedback *store.FeedbackStore, registry *review.Registry) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		router:   r,
		database: database,
		accounts: accounts,
		content:  content,
		feedback: feedback,
		registry: registry,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/accounts", s.handleAccounts)
	s.router.Get("/api/content", s.handleContent)
	s.router.Get("/api/feedback", s.handleFeedback)
	s.router.Get("/api/sessions", s.handleSessions)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.database.HealthCheck(); err != nil {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.Active(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load accounts")
		return
	}
	type accountView struct {
		Handle     string         `json:"handle"`
		Category   model.Category `json:"category"`
		Priority   int            `json:"priority"`
		Followers  int            `json:"followers"`
		IsVoiceRef bool           `json:"is_voice_ref"`
	}
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountView{
			Handle:     a.Handle,
			Category:   a.Category,
			Priority:   a.Priority,
			Followers:  a.FollowerCount,
			IsVoiceRef: a.IsVoiceRef,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	records, err := s.content.Recent(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	type contentView struct {
		Type      model.ContentType `json:"type"`
		Pillar    model.Pillar      `json:"pillar"`
		Topic     string            `json:"topic"`
		Content   string            `json:"content"`
		CreatedAt time.Time         `json:"created_at"`
	}
	out := make([]contentView, 0, len(records))
	for _, c := range records {
		out = append(out, contentView{
			Type:      c.Type,
			Pillar:    c.Pillar,
			Topic:     c.Topic,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedback.Recent(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load feedback")
		return
	}
	type feedbackView struct {
		Pillar    model.Pillar `json:"pillar"`
		Text      string       `json:"text"`
		CreatedAt time.Time    `json:"created_at"`
	}
	out := make([]feedbackView, 0, len(items))
	for _, fb := range items {
		out = append(out, feedbackView{Pillar: fb.Pillar, Text: fb.Text, CreatedAt: fb.CreatedAt})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	type sessionView struct {
		ThreadID  string        `json:"thread_id"`
		Pillar    model.Pillar  `json:"pillar"`
		Topic     string        `json:"topic"`
		Status    review.Status `json:"status"`
		Drafts    int           `json:"drafts"`
		CreatedAt time.Time     `json:"created_at"`
	}
	sessions := s.registry.Active()
	out := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionView{
			ThreadID:  sess.ThreadID,
			Pillar:    sess.Pillar,
			Topic:     sess.Topic,
			Status:    sess.Status,
			Drafts:    len(sess.Drafts),
			CreatedAt: sess.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
