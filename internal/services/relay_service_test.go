package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/utils"
)

func newRelayFixture(t *testing.T, provider *stubProvider) (*testRepos, *models.User, *models.Interview, RelayService) {
	t.Helper()

	r := newTestRepos(t)
	u := r.seedUser(t, "candidate")

	iv, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend engineer", "senior", "rook", nil)
	require.NoError(t, err)

	svc := NewRelayService(r.interviews, r.messages, r.resumes, provider, time.Second, nil)
	return r, u, iv, svc
}

func TestRelayService_PostMessage(t *testing.T) {
	provider := &stubProvider{reply: "Tell me about a production incident you handled."}
	_, u, iv, svc := newRelayFixture(t, provider)

	userMsg, aiMsg, err := svc.PostMessage(t.Context(), iv.ID, u.ID, "Hi, I'm ready.")
	require.NoError(t, err)

	assert.Equal(t, models.SenderUser, userMsg.Sender)
	assert.Equal(t, "Hi, I'm ready.", userMsg.Content)
	assert.Equal(t, models.SenderAI, aiMsg.Sender)
	assert.Equal(t, provider.reply, aiMsg.Content)

	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, provider.gotSystem, "Rook")
	assert.Contains(t, provider.gotSystem, "backend engineer")

	// greeting + the just-posted user turn were in the prompt
	require.Len(t, provider.gotTurns, 2)
	assert.Equal(t, "assistant", provider.gotTurns[0].Role)
	assert.Equal(t, "user", provider.gotTurns[1].Role)
	assert.Equal(t, "Hi, I'm ready.", provider.gotTurns[1].Content)
}

func TestRelayService_PostMessage_FallbackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream 500")}
	r, u, iv, svc := newRelayFixture(t, provider)

	userMsg, aiMsg, err := svc.PostMessage(t.Context(), iv.ID, u.ID, "What's next?")
	require.NoError(t, err, "provider failure must not surface")
	assert.Equal(t, "What's next?", userMsg.Content)
	assert.Equal(t, FallbackReply, aiMsg.Content)

	// both turns are durable and the interview is untouched
	msgs, err := r.messages.ListByInterview(t.Context(), iv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 3) // greeting + user + fallback

	got, err := r.interviews.GetByID(t.Context(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestRelayService_PostMessage_FallbackOnEmptyReply(t *testing.T) {
	provider := &stubProvider{reply: "   "}
	_, u, iv, svc := newRelayFixture(t, provider)

	_, aiMsg, err := svc.PostMessage(t.Context(), iv.ID, u.ID, "Hello?")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, aiMsg.Content)
}

func TestRelayService_PostMessage_TerminalInterview(t *testing.T) {
	provider := &stubProvider{reply: "unused"}
	r, u, iv, svc := newRelayFixture(t, provider)

	_, err := NewInterviewService(r.interviews, r.resumes).End(t.Context(), iv.ID, u.ID)
	require.NoError(t, err)

	before, err := r.messages.ListByInterview(t.Context(), iv.ID)
	require.NoError(t, err)

	_, _, err = svc.PostMessage(t.Context(), iv.ID, u.ID, "One more thing")
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	assert.Zero(t, provider.calls)

	after, err := r.messages.ListByInterview(t.Context(), iv.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before), "rejected post must not append rows")
}

func TestRelayService_PostMessage_Validation(t *testing.T) {
	provider := &stubProvider{reply: "unused"}
	_, u, iv, svc := newRelayFixture(t, provider)

	_, _, err := svc.PostMessage(t.Context(), iv.ID, u.ID, "   ")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	other := uint(999)
	_, _, err = svc.PostMessage(t.Context(), other, u.ID, "hi")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestRelayService_ListMessages_Ordered(t *testing.T) {
	provider := &stubProvider{reply: "Next question."}
	r, u, iv, svc := newRelayFixture(t, provider)

	for _, content := range []string{"first", "second"} {
		_, _, err := svc.PostMessage(t.Context(), iv.ID, u.ID, content)
		require.NoError(t, err)
	}

	msgs, err := svc.ListMessages(t.Context(), iv.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5) // greeting + 2x(user, ai)
	assert.Equal(t, models.SenderAI, msgs[0].Sender)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "second", msgs[3].Content)

	intruder := r.seedUser(t, "intruder")
	_, err = svc.ListMessages(t.Context(), iv.ID, intruder.ID)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestRelayService_PostMessage_IncludesResumeContext(t *testing.T) {
	r := newTestRepos(t)
	u := r.seedUser(t, "applicant")

	res, err := r.resumes.Create(t.Context(), &models.Resume{
		UserID: u.ID, FileName: "cv.txt", FilePath: "p", UploadedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	resumeSvc := NewResumeService(r.resumes, nil, nil, nil)
	applied, err := resumeSvc.ApplyParsed(t.Context(), res.ID, &models.ParsedResume{
		Name: "Ada Lovelace", Skills: []string{"Go"},
	})
	require.NoError(t, err)
	require.True(t, applied)

	iv, err := NewInterviewService(r.interviews, r.resumes).
		Create(t.Context(), u.ID, "backend", "senior", "bishop", &res.ID)
	require.NoError(t, err)

	provider := &stubProvider{reply: "Noted."}
	svc := NewRelayService(r.interviews, r.messages, r.resumes, provider, time.Second, nil)

	_, _, err = svc.PostMessage(t.Context(), iv.ID, u.ID, "Hello")
	require.NoError(t, err)
	assert.Contains(t, provider.gotSystem, "Ada Lovelace")
}
