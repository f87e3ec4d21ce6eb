// internal/handlers/session/session_handler.go
package session

import (
	"errors"
	"net/http"
	"strconv"

	"sparkhub-service/internal/domain/playsession"
	"sparkhub-service/internal/middleware"
	xerrors "sparkhub-service/internal/pkg/errors"
	"sparkhub-service/internal/pkg/response"
	playsvc "sparkhub-service/internal/service/playsession"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	coordinator *playsvc.Coordinator
}

func NewSessionHandler(coordinator *playsvc.Coordinator) *SessionHandler {
	return &SessionHandler{
		coordinator: coordinator,
	}
}

// StartSession opens a session for a customer
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req playsession.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	sess, err := h.coordinator.Start(c.Request.Context(), &req, middleware.MustGetStaffID(c))
	if err != nil {
		response.FromError(c, "failed to start session", err)
		return
	}

	response.Success(c, http.StatusCreated, "session started", sess)
}

// EndSession closes a session and returns the settlement receipt
func (h *SessionHandler) EndSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid session ID", err)
		return
	}

	receipt, err := h.coordinator.End(c.Request.Context(), id, middleware.MustGetStaffID(c))
	if errors.Is(err, xerrors.ErrInconsistentState) {
		// The session is closed; hand the operator the receipt and the
		// reconciliation detail together.
		response.Error(c, http.StatusInternalServerError, "session closed with errors", err, receipt)
		return
	}
	if err != nil {
		response.FromError(c, "failed to end session", err)
		return
	}

	response.Success(c, http.StatusOK, "session ended", receipt)
}

// GetSession retrieves one session, enriched with its snapshots
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid session ID", err)
		return
	}

	view, err := h.coordinator.Enrich(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "session not found", err)
		return
	}

	response.Success(c, http.StatusOK, "session retrieved", view)
}

// ListActive retrieves the open sessions, optionally scoped to a branch
func (h *SessionHandler) ListActive(c *gin.Context) {
	views, err := h.coordinator.ListActive(c.Request.Context(), c.Query("branch"))
	if err != nil {
		response.FromError(c, "failed to list active sessions", err)
		return
	}

	response.Success(c, http.StatusOK, "active sessions retrieved", views)
}
