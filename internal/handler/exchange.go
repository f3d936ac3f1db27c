package handler

import (
	"net/http"
	"time"

	"github.com/ChalithH/SkillForge/internal/models"
	"github.com/ChalithH/SkillForge/internal/service"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
)

// ExchangeHandler exposes the exchange lifecycle over HTTP. All transition
// rules live in the service; the handler only shapes requests and responses.
type ExchangeHandler struct {
	Exchanges *service.ExchangeService
}

func NewExchangeHandler(exchanges *service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{Exchanges: exchanges}
}

func actorFrom(c *gin.Context, userID uint) service.Actor {
	return service.Actor{
		UserID:    userID,
		UserAgent: c.Request.UserAgent(),
	}
}

type createExchangeReq struct {
	OffererID     uint    `json:"offerer_id" binding:"required"`
	SkillID       uint    `json:"skill_id" binding:"required"`
	ScheduledAt   string  `json:"scheduled_at" binding:"required"`
	DurationHours float64 `json:"duration_hours" binding:"required"`
	Notes         string  `json:"notes" binding:"max=512"`
}

func exchangePayload(ex *models.SkillExchange) gin.H {
	return gin.H{
		"id":             ex.ID,
		"offerer_id":     ex.OffererID,
		"learner_id":     ex.LearnerID,
		"skill_id":       ex.SkillID,
		"scheduled_at":   ex.ScheduledAt,
		"duration_hours": ex.DurationHours,
		"status":         ex.Status,
		"meeting_link":   ex.MeetingLink,
		"notes":          ex.Notes,
		"created_at":     ex.CreatedAt,
		"updated_at":     ex.UpdatedAt,
	}
}

// CreateExchange requests a session: the current user is the learner.
func (h *ExchangeHandler) CreateExchange(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createExchangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "scheduled_at must be RFC3339")
		return
	}
	if err := util.ValidateDuration(req.DurationHours); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	ex, err := h.Exchanges.CreateExchange(user.ID, req.OffererID, req.SkillID, scheduledAt, req.DurationHours, req.Notes, actorFrom(c, user.ID))
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"exchange": exchangePayload(ex),
	})
}

type transitionReq struct {
	Reason string `json:"reason" binding:"max=255"`
}

func (h *ExchangeHandler) transition(c *gin.Context, do func(exchangeID uint, actor service.Actor, reason string) (*models.SkillExchange, error)) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	exchangeID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req transitionReq
	_ = c.ShouldBindJSON(&req) // body optional

	ex, err := do(exchangeID, actorFrom(c, user.ID), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"exchange": exchangePayload(ex),
	})
}

func (h *ExchangeHandler) AcceptExchange(c *gin.Context) {
	h.transition(c, h.Exchanges.AcceptExchange)
}

func (h *ExchangeHandler) RejectExchange(c *gin.Context) {
	h.transition(c, h.Exchanges.RejectExchange)
}

func (h *ExchangeHandler) CancelExchange(c *gin.Context) {
	h.transition(c, h.Exchanges.CancelExchange)
}

func (h *ExchangeHandler) MarkAsNoShow(c *gin.Context) {
	h.transition(c, h.Exchanges.MarkAsNoShow)
}

func (h *ExchangeHandler) CompleteExchange(c *gin.Context) {
	h.transition(c, func(exchangeID uint, actor service.Actor, _ string) (*models.SkillExchange, error) {
		return h.Exchanges.CompleteExchange(exchangeID, actor)
	})
}

func (h *ExchangeHandler) GetExchange(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	exchangeID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	ex, err := h.Exchanges.GetExchange(exchangeID)
	if err != nil {
		fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"exchange": exchangePayload(ex),
	})
}

func (h *ExchangeHandler) ListMyExchanges(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.Exchanges.ListUserExchanges(user.ID, models.ExchangeStatus(c.Query("status")))
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, exchangePayload(&list[i]))
	}

	util.Success(c, util.Response{
		"exchanges": items,
	})
}

// GetStatusHistory returns the full audit trail oldest-first.
func (h *ExchangeHandler) GetStatusHistory(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	exchangeID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.Exchanges.GetExchangeStatusHistory(exchangeID)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		items = append(items, gin.H{
			"id":          r.ID,
			"exchange_id": r.ExchangeID,
			"from_status": r.FromStatus,
			"to_status":   r.ToStatus,
			"changed_by":  r.ChangedBy,
			"reason":      r.Reason,
			"user_agent":  r.UserAgent,
			"created_at":  r.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"history": items,
	})
}
