package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/http/response"
)

// FrameHandler serves captured slides at /frames_<lecture id>/<file>. gin cannot
// route a parameter inside a segment name, so it is mounted as the NoRoute handler.
type FrameHandler struct {
	uploadDir string
}

func NewFrameHandler(uploadDir string) *FrameHandler {
	return &FrameHandler{uploadDir: uploadDir}
}

func (h *FrameHandler) ServeOrNotFound(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		if path, ok := h.framePath(c.Request.URL.Path); ok {
			c.File(path)
			return
		}
	}
	response.RespondError(c, http.StatusNotFound, "not_found", errNotFound)
}

func (h *FrameHandler) framePath(urlPath string) (string, bool) {
	rest, ok := strings.CutPrefix(urlPath, "/frames_")
	if !ok {
		return "", false
	}
	idPart, file, ok := strings.Cut(rest, "/")
	if !ok || file == "" || strings.Contains(file, "/") {
		return "", false
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return "", false
	}
	file = filepath.Base(file)
	if file == "." || file == ".." {
		return "", false
	}
	return filepath.Join(h.uploadDir, "frames_"+id.String(), file), true
}

var errNotFound = errors.New("not found")
