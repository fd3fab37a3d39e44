package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/data/repos"
	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/apierr"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
	"github.com/yungbote/studytree-backend/internal/platform/ytdlp"
)

const (
	chatSystemPrompt = "You are a helpful teaching assistant. Answer questions based ONLY on the provided lecture transcript."
	chatMaxTokens    = 800
)

// JobSubmitter queues a lecture for background processing.
type JobSubmitter interface {
	Submit(jobType string, lectureID uuid.UUID)
}

type LectureStatus struct {
	IsComplete    bool        `json:"is_complete"`
	Stage         types.Stage `json:"stage"`
	Error         string      `json:"error"`
	HasTranscript bool        `json:"has_transcript"`
	HasSummary    bool        `json:"has_summary"`
	HasQuizzes    bool        `json:"has_quizzes"`
	HasSlides     bool        `json:"has_slides"`
}

type LectureService interface {
	CreateFromUpload(dbc dbctx.Context, title string, videoPath string) (*types.Lecture, error)
	CreateFromURL(dbc dbctx.Context, title string, rawURL string) (*types.Lecture, error)
	List(dbc dbctx.Context) ([]*types.Lecture, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error)
	Status(dbc dbctx.Context, id uuid.UUID) (*LectureStatus, error)
	Ask(dbc dbctx.Context, id uuid.UUID, question string) (string, error)
}

type lectureService struct {
	log    *logger.Logger
	repo   repos.LectureRepo
	jobs   JobSubmitter
	ai     openai.Client
	notify LectureNotifier
}

func NewLectureService(baseLog *logger.Logger, repo repos.LectureRepo, jobs JobSubmitter, ai openai.Client, notify LectureNotifier) LectureService {
	return &lectureService{
		log:    baseLog.With("service", "LectureService"),
		repo:   repo,
		jobs:   jobs,
		ai:     ai,
		notify: notify,
	}
}

func (s *lectureService) CreateFromUpload(dbc dbctx.Context, title string, videoPath string) (*types.Lecture, error) {
	if strings.TrimSpace(videoPath) == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_video", fmt.Errorf("video file required"))
	}
	return s.create(dbc, &types.Lecture{
		Title:      strings.TrimSpace(title),
		SourceKind: types.SourceLocalFile,
		VideoPath:  videoPath,
	})
}

func (s *lectureService) CreateFromURL(dbc dbctx.Context, title string, rawURL string) (*types.Lecture, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ytdlp.ValidateURL(rawURL); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_url", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = rawURL
	}
	return s.create(dbc, &types.Lecture{
		Title:      title,
		SourceKind: types.SourceRemoteURL,
		SourceURL:  rawURL,
	})
}

func (s *lectureService) create(dbc dbctx.Context, l *types.Lecture) (*types.Lecture, error) {
	if l.Title == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_title", fmt.Errorf("title required"))
	}
	created, err := s.repo.Create(dbc, l)
	if err != nil {
		return nil, fmt.Errorf("create lecture: %w", err)
	}
	s.log.Info("Lecture created", "lecture_id", created.ID, "source", created.SourceKind)
	if s.notify != nil {
		s.notify.StageChanged(dbc.Ctx, created)
	}
	if s.jobs != nil {
		s.jobs.Submit(types.JobLectureProcess, created.ID)
	}
	return created, nil
}

func (s *lectureService) List(dbc dbctx.Context) ([]*types.Lecture, error) {
	return s.repo.List(dbc)
}

func (s *lectureService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	l, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apierr.New(http.StatusNotFound, "lecture_not_found", fmt.Errorf("lecture not found"))
	}
	return l, nil
}

func (s *lectureService) Status(dbc dbctx.Context, id uuid.UUID) (*LectureStatus, error) {
	l, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	return &LectureStatus{
		IsComplete:    l.Stage == types.StageComplete,
		Stage:         l.Stage,
		Error:         l.Error,
		HasTranscript: l.TranscriptMD != "",
		HasSummary:    l.SummaryMD != "",
		HasQuizzes:    len(l.QuizItems()) > 0,
		HasSlides:     len(l.SlideList()) > 0,
	}, nil
}

// Ask answers a question from the formatted transcript only.
func (s *lectureService) Ask(dbc dbctx.Context, id uuid.UUID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apierr.New(http.StatusBadRequest, "missing_question", fmt.Errorf("question required"))
	}
	l, err := s.Get(dbc, id)
	if err != nil {
		return "", err
	}
	if l.TranscriptMD == "" {
		return "", apierr.New(http.StatusNotFound, "transcript_not_found", fmt.Errorf("lecture transcript not found"))
	}
	user := "Transcript:\n\"" + l.TranscriptMD + "\"\n\nQuestion:\n" + question
	answer, err := s.ai.Complete(dbc.Ctx, []openai.Message{
		openai.SystemMessage(chatSystemPrompt),
		openai.UserMessage(user),
	}, chatMaxTokens)
	if err != nil {
		s.log.Warn("Lecture chat failed", "lecture_id", id, "error", err)
		return "", apierr.New(http.StatusBadGateway, "chat_failed", err)
	}
	return strings.TrimSpace(answer), nil
}
