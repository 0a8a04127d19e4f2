package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type CreateInterviewRequest struct {
	Role     string `json:"role" binding:"required"`
	Level    string `json:"level" binding:"required"`   // junior|intermediate|senior
	Persona  string `json:"persona" binding:"required"` // pawn|knight|bishop|rook|queen|king
	ResumeID *uint  `json:"resume_id"`
}

func (h *InterviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
		return
	}

	iv, err := h.svc.Create(c.Request.Context(), userID, req.Role, req.Level, req.Persona, req.ResumeID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, iv)
}

func (h *InterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": rows})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	iv, err := h.svc.Get(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	iv, err := h.svc.End(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	iv, err := h.svc.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}
