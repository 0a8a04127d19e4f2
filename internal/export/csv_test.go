package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestEscapeField(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "", EscapeField(nil))
	assert.Equal(t, "", EscapeField((*time.Time)(nil)))
	assert.Equal(t, "", EscapeField((*uint)(nil)))
	assert.Equal(t, `"2026-08-28T10:30:00Z"`, EscapeField(ts))
	assert.Equal(t, `"hello"`, EscapeField("hello"))
	assert.Equal(t, `"say ""hi"""`, EscapeField(`say "hi"`))
	assert.Equal(t, `"42"`, EscapeField(uint(42)))
	assert.Equal(t, `"{""a"":1}"`, EscapeField(datatypes.JSON(`{"a":1}`)))

	id := uint(7)
	assert.Equal(t, `"7"`, EscapeField(&id))
}

func TestWriteDelimited_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	records := []Record{
		{
			{Name: "id", Value: uint(1)},
			{Name: "role", Value: `tricky "backend" role`},
			{Name: "resume_id", Value: (*uint)(nil)},
			{Name: "started_at", Value: started},
		},
		{
			{Name: "id", Value: uint(2)},
			{Name: "role", Value: "frontend,with,commas"},
			{Name: "resume_id", Value: (*uint)(nil)},
			{Name: "started_at", Value: started.Add(time.Hour)},
		},
	}

	path := FileName(dir, "interviews", "csv", started)
	require.NoError(t, WriteDelimited(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "role", "resume_id", "started_at"}, rows[0])
	assert.Equal(t, []string{"1", `tricky "backend" role`, "", "2026-05-02T09:00:00Z"}, rows[1])
	assert.Equal(t, []string{"2", "frontend,with,commas", "", "2026-05-02T10:00:00Z"}, rows[2])
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 30, 5, 0, time.UTC)
	got := FileName("/tmp/exports", "interviews", "csv", ts)
	assert.Equal(t, filepath.Join("/tmp/exports", "interviews_20260828_103005.csv"), got)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, map[string]any{"ok": true}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"ok": true`))
}
