package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

func TestNewServiceSQLiteMigrates(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "data", "test.db"))

	svc, err := NewService(logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	if svc.Driver() != DriverSQLite {
		t.Fatalf("driver: got=%s want=%s", svc.Driver(), DriverSQLite)
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !svc.DB().Migrator().HasTable("lecture") {
		t.Fatalf("expected lecture table")
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")
	if _, err := NewService(logger.NewNop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
