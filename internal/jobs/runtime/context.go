package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/data/repos"
	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/services"
)

/*
Context is the execution handle for one lecture pipeline run.
It wraps:
  - the in-memory lecture row,
  - the repo used to persist it,
  - the stage notifier.

Pipelines never write the lecture row directly. Stage changes go through
SetStage, Fail and Complete so the transition rules stay in one place.
A single Context is the only writer of its lecture.
*/
type Context struct {
	Ctx     context.Context
	Lecture *types.Lecture
	Repo    repos.LectureRepo
	Notify  services.LectureNotifier
	Log     *logger.Logger
}

func NewContext(ctx context.Context, lecture *types.Lecture, repo repos.LectureRepo, notify services.LectureNotifier, baseLog *logger.Logger) *Context {
	c := &Context{
		Ctx:     ctxutil.Default(ctx),
		Lecture: lecture,
		Repo:    repo,
		Notify:  notify,
		Log:     baseLog,
	}
	if lecture != nil && baseLog != nil {
		c.Log = baseLog.With("lecture_id", lecture.ID)
	}
	return c
}

type TransitionError struct {
	From types.Stage
	To   types.Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal stage transition %s -> %s", e.From, e.To)
}

// SetStage persists the stage a pipeline is about to start.
func (c *Context) SetStage(stage types.Stage) error {
	return c.transition(c.Ctx, stage, map[string]interface{}{"stage": stage})
}

// Save persists stage-scoped results without touching the stage.
func (c *Context) Save(updates map[string]interface{}) error {
	if c == nil || c.Lecture == nil || c.Lecture.ID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["stage"]; ok {
		return fmt.Errorf("stage must be changed through SetStage")
	}
	if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.Ctx}, c.Lecture.ID, updates); err != nil {
		return fmt.Errorf("persist lecture fields: %w", err)
	}
	c.Lecture.UpdatedAt = time.Now()
	return nil
}

// Complete writes the final results together with stage=complete.
func (c *Context) Complete(updates map[string]interface{}) error {
	all := map[string]interface{}{}
	for k, v := range updates {
		all[k] = v
	}
	all["stage"] = types.StageComplete
	all["error"] = ""
	return c.transition(c.Ctx, types.StageComplete, all)
}

/*
Fail records err and moves the lecture to failed.
The write uses a detached context so a canceled run can still record why it
stopped. A lecture already in a terminal stage is left alone.
*/
func (c *Context) Fail(err error) {
	if c == nil || c.Lecture == nil {
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if terr := c.transition(ctxutil.Detach(c.Ctx), types.StageFailed, map[string]interface{}{
		"stage": types.StageFailed,
		"error": msg,
	}); terr != nil {
		if c.Log != nil {
			c.Log.Warn("Could not record lecture failure", "error", terr, "cause", msg)
		}
		return
	}
	if c.Log != nil {
		c.Log.Error("Lecture processing failed", "error", msg)
	}
}

func (c *Context) transition(ctx context.Context, to types.Stage, updates map[string]interface{}) error {
	if c == nil || c.Lecture == nil || c.Lecture.ID == uuid.Nil {
		return nil
	}
	from := c.Lecture.Stage
	if !types.CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	if c.Repo != nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: ctx}, c.Lecture.ID, updates); err != nil {
			return fmt.Errorf("persist stage %s: %w", to, err)
		}
	}

	c.Lecture.Stage = to
	if v, ok := updates["error"].(string); ok {
		c.Lecture.Error = v
	}
	c.Lecture.UpdatedAt = time.Now()

	if c.Notify != nil {
		c.Notify.StageChanged(ctx, c.Lecture)
	}
	return nil
}
