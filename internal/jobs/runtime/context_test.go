package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/studytree-backend/internal/data/repos/lectures"
	"github.com/yungbote/studytree-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
)

type recordingNotifier struct {
	stages []types.Stage
}

func (n *recordingNotifier) StageChanged(_ context.Context, l *types.Lecture) {
	n.stages = append(n.stages, l.Stage)
}

func TestContextLifecycle(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := lectures.NewLectureRepo(db, testutil.Logger(t))
	lecture := testutil.SeedLecture(t, ctx, db, "Biology 101")
	notify := &recordingNotifier{}

	jc := NewContext(ctx, lecture, repo, notify, testutil.Logger(t))

	if err := jc.SetStage(types.StageExtractingAudio); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if err := jc.SetStage(types.StageTranscribing); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if err := jc.Save(map[string]interface{}{"raw_transcript": "hello"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := jc.Save(map[string]interface{}{"stage": types.StageComplete}); err == nil {
		t.Fatalf("Save must refuse stage writes")
	}

	err := jc.SetStage(types.StageExtractingSlides)
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("skip ahead: got=%v want TransitionError", err)
	}

	stored, _ := repo.GetByID(dbctx.Context{Ctx: ctx}, lecture.ID)
	if stored.Stage != types.StageTranscribing || stored.RawTranscript != "hello" {
		t.Fatalf("stored: stage=%s raw=%q", stored.Stage, stored.RawTranscript)
	}

	jc.Fail(errors.New("whisper failed with code 1: boom"))
	stored, _ = repo.GetByID(dbctx.Context{Ctx: ctx}, lecture.ID)
	if stored.Stage != types.StageFailed || stored.Error != "whisper failed with code 1: boom" {
		t.Fatalf("after Fail: stage=%s error=%q", stored.Stage, stored.Error)
	}

	jc.Fail(errors.New("second failure"))
	stored, _ = repo.GetByID(dbctx.Context{Ctx: ctx}, lecture.ID)
	if stored.Error != "whisper failed with code 1: boom" {
		t.Fatalf("terminal lecture must keep first error: got=%q", stored.Error)
	}

	want := []types.Stage{types.StageExtractingAudio, types.StageTranscribing, types.StageFailed}
	if len(notify.stages) != len(want) {
		t.Fatalf("notifications: got=%v want=%v", notify.stages, want)
	}
	for i := range want {
		if notify.stages[i] != want[i] {
			t.Fatalf("notification %d: got=%s want=%s", i, notify.stages[i], want[i])
		}
	}
}

func TestContextComplete(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := lectures.NewLectureRepo(db, testutil.Logger(t))
	lecture := testutil.SeedLecture(t, ctx, db, "Chem")
	jc := NewContext(ctx, lecture, repo, nil, testutil.Logger(t))

	for _, s := range []types.Stage{types.StageExtractingAudio, types.StageTranscribing, types.StageSummarizing, types.StageExtractingSlides} {
		if err := jc.SetStage(s); err != nil {
			t.Fatalf("SetStage(%s): %v", s, err)
		}
	}
	slides := []types.Slide{{Timestamp: 0, Image: "/frames_x/slide_001.png"}}
	if err := jc.Complete(map[string]interface{}{"slides": types.EncodeJSON(slides)}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	stored, _ := repo.GetByID(dbctx.Context{Ctx: ctx}, lecture.ID)
	if stored.Stage != types.StageComplete || len(stored.SlideList()) != 1 {
		t.Fatalf("after Complete: stage=%s slides=%d", stored.Stage, len(stored.SlideList()))
	}
	if err := jc.SetStage(types.StageFailed); err == nil {
		t.Fatalf("complete lecture must not move")
	}
}
