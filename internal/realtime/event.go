package realtime

import (
	"time"

	"github.com/google/uuid"
)

// StageEvent is published whenever a lecture's persisted stage changes.
type StageEvent struct {
	LectureID uuid.UUID `json:"lecture_id"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
