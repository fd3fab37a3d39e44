package services

import (
	"context"
	"time"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/realtime"
	"github.com/yungbote/studytree-backend/internal/realtime/bus"
)

type LectureNotifier interface {
	StageChanged(ctx context.Context, lecture *types.Lecture)
}

type lectureNotifier struct {
	log *logger.Logger
	bus bus.Bus
}

// NewLectureNotifier publishes stage changes on b. A nil bus only logs.
func NewLectureNotifier(baseLog *logger.Logger, b bus.Bus) LectureNotifier {
	return &lectureNotifier{
		log: baseLog.With("service", "LectureNotifier"),
		bus: b,
	}
}

func (n *lectureNotifier) StageChanged(ctx context.Context, lecture *types.Lecture) {
	if lecture == nil {
		return
	}
	evt := realtime.StageEvent{
		LectureID: lecture.ID,
		Stage:     string(lecture.Stage),
		Error:     lecture.Error,
		At:        time.Now().UTC(),
	}
	n.log.Info("Lecture stage changed", "lecture_id", evt.LectureID, "stage", evt.Stage, "error", evt.Error)
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(ctx, evt); err != nil {
		n.log.Warn("Stage event publish failed", "lecture_id", evt.LectureID, "error", err)
	}
}
