package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/lumokids/companion/pkg/auth"
	"github.com/lumokids/companion/pkg/chat"
)

type Server struct {
	logger   *log.Logger
	chat     *chat.Service
	verifier auth.Verifier
}

func New(logger *log.Logger, chatService *chat.Service, verifier auth.Verifier) *Server {
	return &Server{
		logger:   logger,
		chat:     chatService,
		verifier: verifier,
	}
}

func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		Debug:            false,
	}).Handler)

	router.Get("/healthz", s.handleHealthz)
	router.Post("/chat", s.handleChat)

	return router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	userID, err := s.verifier.VerifyToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("token verification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authorization check failed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.chat.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "child profile not found")
			return
		}
		var upstream *chat.UpstreamError
		if errors.As(err, &upstream) {
			s.logger.Error("reply generation failed", "error", upstream.Err, "user_id", userID)
		} else {
			s.logger.Error("chat pipeline failed", "error", err, "user_id", userID)
		}
		writeError(w, http.StatusInternalServerError, "failed to generate reply")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
