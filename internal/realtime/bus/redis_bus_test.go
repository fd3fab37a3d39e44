package bus

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/realtime"
)

func TestEncodeEventStampsTime(t *testing.T) {
	id := uuid.New()
	raw, err := encodeEvent(realtime.StageEvent{LectureID: id, Stage: "transcribing"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var back realtime.StageEvent
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.LectureID != id || back.Stage != "transcribing" || back.At.IsZero() {
		t.Fatalf("unexpected event: %+v", back)
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	if _, err := NewRedisBus(logger.NewNop()); err == nil {
		t.Fatal("expected error without REDIS_ADDR")
	}
}
