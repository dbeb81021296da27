package services

import (
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thereayou/lecture-live/internal/database"
	"github.com/thereayou/lecture-live/internal/models"
	"github.com/thereayou/lecture-live/internal/policy"
)

func openTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return database.NewDatabase(db)
}

func seedUser(t *testing.T, db *database.Database, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@test.local",
		PasswordHash: "x",
		DisplayName:  "User " + role,
		Role:         role,
	}
	if err := db.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func seedSession(t *testing.T, db *database.Database, lecturerID uuid.UUID, status string) *models.Session {
	t.Helper()
	s := &models.Session{
		ID:         uuid.New(),
		Title:      "Test Lecture",
		JoinCode:   GenerateJoinCode(),
		LecturerID: lecturerID,
		Status:     status,
		StartTime:  time.Now(),
	}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func asPrincipal(u *models.User) policy.Principal {
	return policy.Principal{UserID: u.ID, Role: u.Role}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
