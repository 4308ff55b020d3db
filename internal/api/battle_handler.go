package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/service"
)

// Arena is the part of the battle service the handlers call.
type Arena interface {
	JoinQueue(ctx context.Context, userID, avatarID string) (service.QueueStatus, error)
	PollQueue(ctx context.Context, userID string) (service.QueueStatus, error)
	LeaveQueue(ctx context.Context, userID string) error
	MarkReady(ctx context.Context, matchID, userID string) (*service.BattleView, error)
	SubmitAction(ctx context.Context, matchID, userID string, req service.ActionRequest) (*service.BattleView, error)
	GetStatus(ctx context.Context, matchID, userID string) (*service.BattleView, error)
}

// BattleHandler groups the matchmaking and battle polling handlers.
type BattleHandler struct {
	arena Arena
}

// NewBattleHandler creates a BattleHandler over the given service.
func NewBattleHandler(arena Arena) *BattleHandler {
	return &BattleHandler{arena: arena}
}

type joinQueueRequest struct {
	AvatarID string `json:"avatar_id"`
}

type actionRequest struct {
	TurnNumber *int   `json:"turn_number"`
	Action     string `json:"action"`
	AbilityID  string `json:"ability_id"`
}

// JoinQueue handles POST /pvp/queue.
func (h *BattleHandler) JoinQueue(c *gin.Context) {
	var req joinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.AvatarID) == "" {
		badRequest(c, constants.ErrAvatarIDRequired)
		return
	}
	status, err := h.arena.JoinQueue(c.Request.Context(), currentUserID(c), req.AvatarID)
	if err != nil {
		writeError(c, err)
		return
	}
	code := http.StatusAccepted
	if status.Matched {
		code = http.StatusCreated
	}
	c.JSON(code, status)
}

// PollQueue handles GET /pvp/queue.
func (h *BattleHandler) PollQueue(c *gin.Context) {
	status, err := h.arena.PollQueue(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// LeaveQueue handles DELETE /pvp/queue. Leaving twice is not an error.
func (h *BattleHandler) LeaveQueue(c *gin.Context) {
	if err := h.arena.LeaveQueue(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ready handles POST /battles/:matchID/ready.
func (h *BattleHandler) Ready(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	view, err := h.arena.MarkReady(c.Request.Context(), matchID, currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitAction handles POST /battles/:matchID/action.
func (h *BattleHandler) SubmitAction(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	if req.TurnNumber == nil {
		badRequest(c, constants.ErrTurnNumberMissing)
		return
	}
	view, err := h.arena.SubmitAction(c.Request.Context(), matchID, currentUserID(c), service.ActionRequest{
		TurnNumber: *req.TurnNumber,
		Kind:       game.ActionKind(strings.ToLower(strings.TrimSpace(req.Action))),
		AbilityID:  req.AbilityID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetBattle handles GET /battles/:matchID. It is the polling endpoint that
// drives timeouts, AI turns and outcome delivery.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	view, err := h.arena.GetStatus(c.Request.Context(), matchID, currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func matchIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("matchID"))
	if id == "" {
		badRequest(c, constants.ErrInvalidMatchID)
		return "", false
	}
	return id, true
}
