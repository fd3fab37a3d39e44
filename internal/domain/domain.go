package domain

import (
	"github.com/yungbote/studytree-backend/internal/domain/lectures"
	"gorm.io/datatypes"
)

type (
	Lecture    = lectures.Lecture
	QuizItem   = lectures.QuizItem
	Slide      = lectures.Slide
	Stage      = lectures.Stage
	SourceKind = lectures.SourceKind
)

const (
	StageUploaded         = lectures.StageUploaded
	StageDownloading      = lectures.StageDownloading
	StageExtractingAudio  = lectures.StageExtractingAudio
	StageTranscribing     = lectures.StageTranscribing
	StageSummarizing      = lectures.StageSummarizing
	StageExtractingSlides = lectures.StageExtractingSlides
	StageComplete         = lectures.StageComplete
	StageFailed           = lectures.StageFailed

	JobLectureProcess = lectures.JobLectureProcess

	SourceLocalFile = lectures.SourceLocalFile
	SourceRemoteURL = lectures.SourceRemoteURL
)

var CanTransition = lectures.CanTransition

func EncodeJSON[T any](items []T) datatypes.JSON { return lectures.EncodeJSON(items) }
