package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/utils"
)

type ResumeHandler struct {
	svc services.ResumeService
}

func NewResumeHandler(svc services.ResumeService) *ResumeHandler {
	return &ResumeHandler{svc: svc}
}

var resumeMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Upload", "missing multipart field 'file'", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mimeType, allowed := resumeMimeTypes[ext]
	if !allowed {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Upload", "only .pdf, .docx and .txt are allowed", nil))
		return
	}
	if fh.Size <= 0 || fh.Size > 10<<20 {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Upload", "file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "ResumeHandler.Upload", "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (read 512 bytes)
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	if ext == ".pdf" && http.DetectContentType(head) != "application/pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Upload", "invalid content type (must be pdf)", nil))
		return
	}

	// re-compose stream: head + remaining file
	r := &readJoin{a: bytes.NewReader(head), b: file}

	objectName := fmt.Sprintf("resumes/%d/%s%s", userID, uuid.NewString(), ext)

	row, err := h.svc.Upload(c.Request.Context(), userID, fh.Filename, mimeType, objectName, r)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

func (h *ResumeHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.Get(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ResumeHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumes": rows})
}

type readJoin struct {
	a *bytes.Reader
	b io.Reader
}

func (r *readJoin) Read(p []byte) (int, error) {
	if r.a != nil && r.a.Len() > 0 {
		return r.a.Read(p)
	}
	return r.b.Read(p)
}
