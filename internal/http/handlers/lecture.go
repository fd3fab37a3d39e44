package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/http/response"
	"github.com/yungbote/studytree-backend/internal/platform/apierr"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/services"
)

type LectureHandler struct {
	lectures  services.LectureService
	uploadDir string
}

func NewLectureHandler(lectures services.LectureService, uploadDir string) *LectureHandler {
	return &LectureHandler{lectures: lectures, uploadDir: uploadDir}
}

type uploadURLRequest struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	YouTubeURL string `json:"youtube_url"`
}

type chatRequest struct {
	Question string `json:"question"`
}

// POST /api/upload
func (h *LectureHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("video")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_video", fmt.Errorf("no video file uploaded"))
		return
	}
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		response.RespondError(c, http.StatusBadRequest, "invalid_filename", fmt.Errorf("invalid file name"))
		return
	}
	dest := filepath.Join(h.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name))
	if err := c.SaveUploadedFile(fh, dest); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "save_upload_failed", err)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = name
	}
	lecture, err := h.lectures.CreateFromUpload(dbctx.Context{Ctx: c.Request.Context()}, title, dest)
	if err != nil {
		respondServiceError(c, err, "create_lecture_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Processing started!", "lecture_id": lecture.ID})
}

// POST /api/upload-url and /api/upload-youtube
func (h *LectureHandler) UploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rawURL := req.URL
	if strings.TrimSpace(rawURL) == "" {
		rawURL = req.YouTubeURL
	}
	if strings.TrimSpace(rawURL) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_url", fmt.Errorf("url required"))
		return
	}
	lecture, err := h.lectures.CreateFromURL(dbctx.Context{Ctx: c.Request.Context()}, req.Title, rawURL)
	if err != nil {
		respondServiceError(c, err, "create_lecture_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Processing started!", "lecture_id": lecture.ID})
}

// GET /api/lectures
func (h *LectureHandler) ListLectures(c *gin.Context) {
	lectures, err := h.lectures.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		respondServiceError(c, err, "list_lectures_failed")
		return
	}
	response.RespondOK(c, gin.H{"lectures": lectures})
}

// GET /api/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, ok := lectureID(c)
	if !ok {
		return
	}
	lecture, err := h.lectures.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		respondServiceError(c, err, "get_lecture_failed")
		return
	}
	response.RespondOK(c, gin.H{"lecture": lecture})
}

// GET /api/status/:id
func (h *LectureHandler) GetStatus(c *gin.Context) {
	id, ok := lectureID(c)
	if !ok {
		return
	}
	status, err := h.lectures.Status(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		respondServiceError(c, err, "get_status_failed")
		return
	}
	response.RespondOK(c, status)
}

// POST /api/chat/:id
func (h *LectureHandler) Chat(c *gin.Context) {
	id, ok := lectureID(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	answer, err := h.lectures.Ask(dbctx.Context{Ctx: c.Request.Context()}, id, req.Question)
	if err != nil {
		respondServiceError(c, err, "chat_failed")
		return
	}
	response.RespondOK(c, gin.H{"answer": answer})
}

func lectureID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lecture_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error, fallbackCode string) {
	status, code := apierr.StatusOf(err, fallbackCode)
	response.RespondError(c, status, code, err)
}
