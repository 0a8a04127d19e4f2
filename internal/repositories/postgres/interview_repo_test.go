package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/utils"
)

func TestInterviewRepo_CreateWithGreeting(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "magnus")

	repo := NewInterviewRepo(db)
	msgs := NewMessageRepo(db)

	now := time.Now().UTC()
	iv, err := repo.CreateWithGreeting(t.Context(),
		&models.Interview{
			UserID:    u.ID,
			Role:      "backend",
			Level:     models.LevelIntermediate,
			Persona:   "rook",
			Status:    models.StatusInProgress,
			StartedAt: now,
		},
		&models.InterviewMessage{
			Sender:  models.SenderAI,
			Content: "welcome",
			SentAt:  now,
		},
	)
	require.NoError(t, err)
	assert.NotZero(t, iv.ID)
	assert.Equal(t, models.StatusInProgress, iv.Status)
	assert.Nil(t, iv.EndedAt)

	history, err := msgs.ListByInterview(t.Context(), iv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.SenderAI, history[0].Sender)
	assert.Equal(t, iv.ID, history[0].InterviewID)
}

func TestInterviewRepo_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewInterviewRepo(db)

	_, err := repo.GetByID(t.Context(), 12345)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestInterviewRepo_ListByUser_DescendingByStart(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "hikaru")
	repo := NewInterviewRepo(db)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateWithGreeting(t.Context(),
			&models.Interview{
				UserID:    u.ID,
				Role:      "backend",
				Level:     models.LevelJunior,
				Persona:   "pawn",
				Status:    models.StatusInProgress,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
			},
			&models.InterviewMessage{Sender: models.SenderAI, Content: "hi", SentAt: base},
		)
		require.NoError(t, err)
	}

	rows, err := repo.ListByUser(t.Context(), u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].StartedAt.After(rows[i-1].StartedAt), "expected started_at descending")
	}
}

func TestInterviewRepo_ListFiltered(t *testing.T) {
	db := newTestDB(t)
	u1 := seedUser(t, db, "anna")
	u2 := seedUser(t, db, "levy")
	repo := NewInterviewRepo(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(userID uint, at time.Time) {
		_, err := repo.CreateWithGreeting(t.Context(),
			&models.Interview{
				UserID: userID, Role: "backend", Level: models.LevelSenior,
				Persona: "queen", Status: models.StatusInProgress, StartedAt: at,
			},
			&models.InterviewMessage{Sender: models.SenderAI, Content: "hi", SentAt: at},
		)
		require.NoError(t, err)
	}
	mk(u1.ID, base)
	mk(u1.ID, base.Add(48*time.Hour))
	mk(u2.ID, base.Add(24*time.Hour))

	start := base.Add(-time.Hour)
	end := base.Add(time.Hour)
	rows, err := repo.ListFiltered(t.Context(), InterviewFilter{UserID: &u1.ID, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, u1.ID, rows[0].UserID)

	// inclusive bounds
	rows, err = repo.ListFiltered(t.Context(), InterviewFilter{Start: &base, End: &base})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = repo.ListFiltered(t.Context(), InterviewFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestInterviewRepo_Finish_GuardsTerminalState(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "fabiano")
	repo := NewInterviewRepo(db)

	now := time.Now().UTC()
	iv, err := repo.CreateWithGreeting(t.Context(),
		&models.Interview{
			UserID: u.ID, Role: "backend", Level: models.LevelJunior,
			Persona: "king", Status: models.StatusInProgress, StartedAt: now,
		},
		&models.InterviewMessage{Sender: models.SenderAI, Content: "hi", SentAt: now},
	)
	require.NoError(t, err)

	applied, err := repo.Finish(t.Context(), iv.ID, models.StatusCompleted, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, applied)

	// second transition must not apply
	applied, err = repo.Finish(t.Context(), iv.ID, models.StatusCancelled, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(t.Context(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
	assert.False(t, got.EndedAt.Before(got.StartedAt))
}
