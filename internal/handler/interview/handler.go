package interview

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	interviewService "github.com/prepdeck/interview-coach/internal/service/interview"
	"github.com/prepdeck/interview-coach/internal/store"
	"github.com/prepdeck/interview-coach/pkg/utils"
)

// Handler exposes the interview endpoints over HTTP.
type Handler struct {
	svc      *interviewService.Service
	sessions store.Store
}

// New creates the interview handler.
func New(svc *interviewService.Service, sessions store.Store) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes mounts the interview routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interview", h.handleTurn)
	r.Post("/feedback", h.handleFeedback)
	r.Post("/reset", h.handleReset)
	r.Get("/session-stats/{sessionID}", h.handleStats)
}

type turnPayload struct {
	SessionID   string `json:"sessionId"`
	Role        string `json:"role"`
	Persona     string `json:"persona"`
	Experience  string `json:"experience"`
	UserMessage string `json:"userMessage"`
}

type turnResponse struct {
	Reply string `json:"reply"`
	// FollowUps is present (possibly empty) on the normal path and omitted
	// on the warning path.
	FollowUps       *[]string `json:"follow_ups,omitempty"`
	Reason          string    `json:"reason"`
	OffTopicWarning bool      `json:"off_topic_warning"`
	WarningCount    int       `json:"warning_count"`
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload turnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.svc.ProcessTurn(r.Context(), interviewService.TurnRequest{
		SessionID:   payload.SessionID,
		Role:        payload.Role,
		Persona:     payload.Persona,
		Experience:  payload.Experience,
		UserMessage: payload.UserMessage,
	})
	if err != nil {
		log.Printf("[handler] interview turn failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Error during interview")
		return
	}

	response := turnResponse{
		Reply:           result.Reply,
		Reason:          result.Reason,
		OffTopicWarning: result.OffTopic,
		WarningCount:    result.WarningCount,
	}
	if !result.OffTopic {
		followUps := result.FollowUps
		if followUps == nil {
			followUps = []string{}
		}
		response.FollowUps = &followUps
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.svc.Feedback(r.Context(), payload.SessionID)
	if err != nil {
		if errors.Is(err, interviewService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid session")
			return
		}
		log.Printf("[handler] feedback failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Error generating feedback")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"feedback":        result.Feedback,
		"off_topic_count": result.OffTopicCount,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Deleting an unknown or empty id is a no-op, never an error.
	if payload.SessionID != "" {
		h.sessions.Delete(payload.SessionID)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	stats, ok := h.sessions.Stats(sessionID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message_count":      stats.TurnCount,
		"off_topic_warnings": stats.Warnings,
		"config":             stats.Config,
		"topics_covered":     stats.Topics,
	})
}
