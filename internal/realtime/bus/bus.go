package bus

import (
	"context"

	"github.com/yungbote/studytree-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.StageEvent) error
	Close() error
}
