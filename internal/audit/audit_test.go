package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Entry{
	At:       time.Date(2026, 5, 17, 9, 42, 7, 0, time.UTC),
	Player:   "alice",
	PlayerID: 7,
	Unit:     "Tank",
	Key:      "health_mult",
	Old:      "1.5",
	New:      "2",
}

func TestEntry_String(t *testing.T) {
	assert.Equal(t, "[2026-05-17 09:42:07] alice (7): Tank health_mult 1.5 -> 2", sample.String())
}

func TestFileLog_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := NewFileLog(path)

	require.NoError(t, log.Record(context.Background(), sample))
	second := sample
	second.Old, second.New = "2", "2.5"
	require.NoError(t, log.Record(context.Background(), second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[2026-05-17 09:42:07] alice (7): Tank health_mult 1.5 -> 2\n"+
			"[2026-05-17 09:42:07] alice (7): Tank health_mult 2 -> 2.5\n",
		string(data))
}

type memRecorder struct {
	entries []Entry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return m.err
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	a := &memRecorder{err: boom}
	b := &memRecorder{}

	err := Multi{a, nil, b}.Record(context.Background(), sample)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.entries, 1)
	assert.Len(t, b.entries, 1, "a failing recorder does not stop the others")

	assert.NoError(t, Multi{b}.Record(context.Background(), sample))
}
