package handler

import (
	"net/http"

	"github.com/ChalithH/SkillForge/internal/presence"
	"github.com/ChalithH/SkillForge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PresenceHandler lets transport adapters (websocket hub, polling clients)
// register live connections against the in-memory tracker.
type PresenceHandler struct {
	Tracker *presence.Tracker
}

func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{Tracker: tracker}
}

// Connect registers a new connection for the current user and returns its id.
func (h *PresenceHandler) Connect(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	connID := uuid.New().String()
	h.Tracker.Connect(user.ID, connID)

	util.Success(c, util.Response{
		"connection_id": connID,
	})
}

type disconnectReq struct {
	ConnectionID string `json:"connection_id" binding:"required"`
}

// Disconnect drops a previously registered connection.
func (h *PresenceHandler) Disconnect(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req disconnectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	h.Tracker.Disconnect(user.ID, req.ConnectionID)

	util.Success(c, util.Response{
		"message": "disconnected",
	})
}

// Online lists the ids of currently online users.
func (h *PresenceHandler) Online(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	util.Success(c, util.Response{
		"user_ids": h.Tracker.OnlineUserIDs(),
		"count":    h.Tracker.OnlineCount(),
	})
}
