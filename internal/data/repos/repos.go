package repos

import (
	"github.com/yungbote/studytree-backend/internal/data/repos/lectures"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type LectureRepo = lectures.LectureRepo

type Repos struct {
	Lectures LectureRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Lectures: lectures.NewLectureRepo(db, log),
	}
}
