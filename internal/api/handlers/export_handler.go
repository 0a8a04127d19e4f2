package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/utils"
)

type ExportHandler struct {
	svc services.ExportService
}

func NewExportHandler(svc services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Interviews exports the caller's interviews, optionally bounded by an
// inclusive started_at range. Admins may pass ?owner= to export another
// user's set.
func (h *ExportHandler) Interviews(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	f := pgrepo.InterviewFilter{UserID: &userID}

	if s := c.Query("owner"); s != "" {
		role, _ := c.Get("role")
		if role != "admin" {
			writeError(c, utils.E(utils.CodeForbidden, "ExportHandler.Interviews", "only admins may export other users", nil))
			return
		}
		owner, err := strconv.ParseUint(s, 10, 64)
		if err != nil || owner == 0 {
			writeError(c, utils.EV("ExportHandler.Interviews", "invalid query", []utils.FieldError{
				{Field: "owner", Message: "must be a positive integer"},
			}))
			return
		}
		o := uint(owner)
		f.UserID = &o
	}

	var details []utils.FieldError
	if s := c.Query("start"); s != "" {
		t, err := parseTimeParam(s)
		if err != nil {
			details = append(details, utils.FieldError{Field: "start", Message: "must be RFC3339 or YYYY-MM-DD"})
		} else {
			f.Start = &t
		}
	}
	if s := c.Query("end"); s != "" {
		t, err := parseTimeParam(s)
		if err != nil {
			details = append(details, utils.FieldError{Field: "end", Message: "must be RFC3339 or YYYY-MM-DD"})
		} else {
			f.End = &t
		}
	}
	if len(details) > 0 {
		writeError(c, utils.EV("ExportHandler.Interviews", "invalid query", details))
		return
	}

	res, err := h.svc.ExportInterviews(c.Request.Context(), f)
	h.respond(c, res, err)
}

func (h *ExportHandler) Messages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.ExportMessages(c.Request.Context(), id, userID)
	h.respond(c, res, err)
}

func (h *ExportHandler) All(c *gin.Context) {
	res, err := h.svc.ExportAll(c.Request.Context())
	h.respond(c, res, err)
}

func (h *ExportHandler) respond(c *gin.Context, res *services.ExportResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Message != "" {
		c.JSON(http.StatusOK, gin.H{"message": res.Message})
		return
	}
	c.FileAttachment(res.Path, filepath.Base(res.Path))
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
