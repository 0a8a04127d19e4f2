package services

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlehq/checkmate/internal/models"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/utils"
)

func newExportFixture(t *testing.T) (*testRepos, ExportService, string) {
	t.Helper()
	r := newTestRepos(t)
	dir := t.TempDir()
	return r, NewExportService(r.users, r.resumes, r.interviews, r.messages, dir), dir
}

func TestExportService_ExportInterviews_Empty(t *testing.T) {
	_, svc, _ := newExportFixture(t)

	res, err := svc.ExportInterviews(t.Context(), pgrepo.InterviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, NoInterviewsMessage, res.Message)
	assert.Empty(t, res.Path)
	assert.Zero(t, res.Count)
}

func TestExportService_ExportInterviews_WritesFile(t *testing.T) {
	r, svc, _ := newExportFixture(t)
	u := r.seedUser(t, "exported")

	_, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend", "senior", "rook", nil)
	require.NoError(t, err)

	res, err := svc.ExportInterviews(t.Context(), pgrepo.InterviewFilter{UserID: &u.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	require.NotEmpty(t, res.Path)

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"id", "user_id", "resume_id", "role", "level", "persona", "status", "started_at", "ended_at",
	}, rows[0])
	assert.Equal(t, "backend", rows[1][3])
	assert.Equal(t, "", rows[1][2], "nil resume_id exports as empty field")
	assert.Equal(t, "", rows[1][8], "in_progress interview has no ended_at")
}

func TestExportService_ExportInterviews_DateFilter(t *testing.T) {
	r, svc, _ := newExportFixture(t)
	u := r.seedUser(t, "filtered")

	_, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend", "senior", "rook", nil)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-48 * time.Hour)
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	res, err := svc.ExportInterviews(t.Context(), pgrepo.InterviewFilter{Start: &past, End: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, NoInterviewsMessage, res.Message)
}

func TestExportService_ExportMessages(t *testing.T) {
	r, svc, _ := newExportFixture(t)
	u := r.seedUser(t, "chatty")
	intruder := r.seedUser(t, "nosy")

	iv, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend", "senior", "queen", nil)
	require.NoError(t, err)

	res, err := svc.ExportMessages(t.Context(), iv.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count, "seeded greeting exports")
	assert.NotEmpty(t, res.Path)

	_, err = svc.ExportMessages(t.Context(), iv.ID, intruder.ID)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	_, err = svc.ExportMessages(t.Context(), iv.ID+100, u.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestExportService_ExportAll(t *testing.T) {
	r, svc, _ := newExportFixture(t)
	u := r.seedUser(t, "everything")

	_, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend", "junior", "pawn", nil)
	require.NoError(t, err)

	res, err := svc.ExportAll(t.Context())
	require.NoError(t, err)
	// 1 user + 1 interview + 1 greeting message
	assert.Equal(t, 3, res.Count)

	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)

	var env struct {
		ExportedAt time.Time                 `json:"exported_at"`
		Users      []models.User             `json:"users"`
		Interviews []models.Interview        `json:"interviews"`
		Messages   []models.InterviewMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(b, &env))
	assert.False(t, env.ExportedAt.IsZero())
	assert.Len(t, env.Users, 1)
	assert.Len(t, env.Interviews, 1)
	assert.Len(t, env.Messages, 1)
}
