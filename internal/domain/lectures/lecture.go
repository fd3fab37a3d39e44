package lectures

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SourceKind string

const (
	SourceLocalFile SourceKind = "local_file"
	SourceRemoteURL SourceKind = "remote_url"
)

// QuizItem is one multiple-choice question. CorrectAnswer indexes Options.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Slide is a captured frame. Timestamp is whole seconds into the video.
type Slide struct {
	Timestamp int    `json:"timestamp"`
	Image     string `json:"image"`
}

type Lecture struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	SourceKind     SourceKind     `gorm:"column:source_kind;not null;index" json:"source_kind"`
	SourceURL      string         `gorm:"column:source_url" json:"source_url,omitempty"`
	VideoPath      string         `gorm:"column:video_path" json:"video_path,omitempty"`
	Duration       *float64       `gorm:"column:duration" json:"duration,omitempty"`
	RawTranscript  string         `gorm:"column:raw_transcript;type:text" json:"raw_transcript,omitempty"`
	TranscriptMD   string         `gorm:"column:transcript_md;type:text" json:"transcript_md,omitempty"`
	TranscriptHTML string         `gorm:"column:transcript_html;type:text" json:"transcript_html,omitempty"`
	SummaryMD      string         `gorm:"column:summary_md;type:text" json:"summary_md,omitempty"`
	SummaryHTML    string         `gorm:"column:summary_html;type:text" json:"summary_html,omitempty"`
	Quiz           datatypes.JSON `gorm:"column:quiz;type:jsonb" json:"quiz"`
	Slides         datatypes.JSON `gorm:"column:slides;type:jsonb" json:"slides"`
	Stage          Stage          `gorm:"column:stage;not null;index" json:"stage"`
	Error          string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lecture) TableName() string { return "lecture" }

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Stage == "" {
		l.Stage = StageUploaded
	}
	if l.SourceKind == "" {
		l.SourceKind = SourceLocalFile
	}
	if len(l.Quiz) == 0 {
		l.Quiz = datatypes.JSON([]byte("[]"))
	}
	if len(l.Slides) == 0 {
		l.Slides = datatypes.JSON([]byte("[]"))
	}
	return nil
}

func (l *Lecture) QuizItems() []QuizItem {
	var out []QuizItem
	if l == nil || len(l.Quiz) == 0 {
		return out
	}
	_ = json.Unmarshal(l.Quiz, &out)
	return out
}

func (l *Lecture) SlideList() []Slide {
	var out []Slide
	if l == nil || len(l.Slides) == 0 {
		return out
	}
	_ = json.Unmarshal(l.Slides, &out)
	return out
}

// EncodeJSON marshals quiz items or slides for a jsonb column; nil encodes as [].
func EncodeJSON[T any](items []T) datatypes.JSON {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}
