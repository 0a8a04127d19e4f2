package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/providers/google"
	"github.com/castlehq/checkmate/internal/providers/llm"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
)

type testRepos struct {
	db         *gorm.DB
	users      pgrepo.UserRepository
	resumes    pgrepo.ResumeRepository
	interviews pgrepo.InterviewRepository
	messages   pgrepo.MessageRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Resume{},
		&models.Interview{},
		&models.InterviewMessage{},
	))

	return &testRepos{
		db:         db,
		users:      pgrepo.NewUserRepo(db),
		resumes:    pgrepo.NewResumeRepo(db),
		interviews: pgrepo.NewInterviewRepo(db),
		messages:   pgrepo.NewMessageRepo(db),
	}
}

func (r *testRepos) seedUser(t *testing.T, username string) *models.User {
	t.Helper()

	u, err := r.users.Create(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	return u
}

// stubProvider scripts the completion call for relay tests.
type stubProvider struct {
	reply string
	err   error

	calls     int
	gotSystem string
	gotTurns  []llm.Message
}

func (s *stubProvider) Complete(_ context.Context, system string, turns []llm.Message) (string, error) {
	s.calls++
	s.gotSystem = system
	s.gotTurns = turns
	return s.reply, s.err
}

func (s *stubProvider) Close() error { return nil }

// stubQueue records enqueued resume ids for upload tests.
type stubQueue struct {
	ids []uint
	err error
}

func (q *stubQueue) Enqueue(_ context.Context, resumeID uint) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, resumeID)
	return nil
}

// stubVerifier returns a canned google profile.
type stubVerifier struct {
	profile *google.Profile
	err     error
}

func (v *stubVerifier) Verify(_ context.Context, idToken string) (*google.Profile, error) {
	if idToken == "" {
		return nil, errors.New("empty id token")
	}
	if v.err != nil {
		return nil, v.err
	}
	return v.profile, nil
}
