package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lmerrick/dashguard/internal/api/apierr"
	"github.com/lmerrick/dashguard/internal/api/middleware"
	"github.com/lmerrick/dashguard/internal/api/request"
	"github.com/lmerrick/dashguard/internal/api/response"
	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/services/intake"
)

// SessionHandler handles session submission endpoints
type SessionHandler struct {
	intake *intake.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(intakeService *intake.Service) *SessionHandler {
	return &SessionHandler{
		intake: intakeService,
	}
}

// Submit handles POST /api/v1/sessions
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.SessionID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("session_id is required"))
		return
	}

	// Registered identity comes from the verified token, never the body
	userID := middleware.GetUserID(r.Context())
	if userID == "" && req.GuestID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("guest_id is required for unauthenticated submissions"))
		return
	}

	guestToken := req.GuestID
	if userID != "" {
		guestToken = ""
	}

	sub := model.Submission{
		GuestToken:         guestToken,
		ClientSessionToken: req.SessionID,
		DurationSeconds:    req.DurationSeconds,
		FinalScore:         req.FinalScore,
		CoinsCollected:     req.CoinsCollected,
		ObstaclesHit:       req.ObstaclesHit,
		PowerupsCollected:  req.PowerupsCollected,
		DistanceTraveled:   req.DistanceTraveled,
		Outcome:            req.GameResult,
	}

	result, err := h.intake.Submit(r.Context(), userID, sub)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if !result.Verdict.Accepted() {
		if result.Verdict == model.VerdictRateLimitExceeded && result.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result)))
		}
		apierr.WriteError(w, apierr.NewVerdictError(result.Verdict))
		return
	}

	response.JSON(w, http.StatusCreated, response.SubmitSessionResponse{
		SessionID: string(result.SessionID),
		Verdict:   string(result.Verdict),
		Player:    result.Identity.DisplayName(),
	})
}

func retryAfterSeconds(result *intake.Result) int {
	secs := int(result.RetryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
