package lectures

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

type LectureRepo interface {
	Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error)
	List(dbc dbctx.Context) ([]*types.Lecture, error)
	ListByStage(dbc dbctx.Context, stages []types.Stage) ([]*types.Lecture, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return &lectureRepo{
		db:  db,
		log: baseLog.With("repo", "LectureRepo"),
	}
}

func (r *lectureRepo) Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if lecture == nil {
		return nil, errors.New("lecture is nil")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(lecture).Error; err != nil {
		return nil, err
	}
	return lecture, nil
}

// GetByID returns nil, nil when no lecture has the id.
func (r *lectureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var lecture types.Lecture
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&lecture).Error
	if err != nil {
		return nil, err
	}
	if lecture.ID == uuid.Nil {
		return nil, nil
	}
	return &lecture, nil
}

func (r *lectureRepo) List(dbc dbctx.Context) ([]*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Lecture{}
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) ListByStage(dbc dbctx.Context, stages []types.Stage) ([]*types.Lecture, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Lecture{}
	if len(stages) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("stage IN ?", stages).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return errors.New("lecture id is required")
	}
	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Lecture{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
