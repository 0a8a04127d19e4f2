package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/utils"
)

type ConversationHandler struct {
	svc services.RelayService
}

func NewConversationHandler(svc services.RelayService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.svc.ListMessages(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interview_id": id,
		"messages":     rows,
	})
}

func (h *ConversationHandler) Post(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Post", "invalid request body", err))
		return
	}

	userMsg, aiMsg, err := h.svc.PostMessage(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_message": userMsg,
		"ai_message":   aiMsg,
	})
}
