package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/unitbalance/internal/audit"
	"github.com/udisondev/unitbalance/internal/balance"
	"github.com/udisondev/unitbalance/internal/testutil"
)

func TestAuditRepository(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewAuditRepository(pool)
	ctx := context.Background()

	base := time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC)
	entries := []audit.Entry{
		{At: base, Player: "alice", PlayerID: 1, Unit: "Tank", Key: "health_mult", Old: "-", New: "1.5"},
		{At: base.Add(time.Minute), Player: "bob", PlayerID: 2, Unit: "Gunship", Key: "damage_mult", Old: "1", New: "1.2"},
		{At: base.Add(2 * time.Minute), Player: "alice", PlayerID: 1, Unit: "Tank", Key: "health_mult", Old: "1.5", New: "2"},
	}
	for _, e := range entries {
		require.NoError(t, repo.Record(ctx, e))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].New)
	assert.Equal(t, "Gunship", recent[1].Unit)
	assert.True(t, recent[0].At.Equal(entries[2].At))

	tank, err := repo.ByUnit(ctx, "Tank")
	require.NoError(t, err)
	require.Len(t, tank, 2)
	assert.Equal(t, "-", tank[0].Old)
	assert.Equal(t, int64(1), tank[1].PlayerID)
}

func TestGenerationRepository(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewGenerationRepository(pool)
	ctx := context.Background()

	at := time.Date(2026, 5, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordGeneration(ctx, balance.Generation{Number: 1, Fingerprint: "00112233aabbccdd", Applied: 12, At: at}))
	require.NoError(t, repo.RecordGeneration(ctx, balance.Generation{Number: 2, Fingerprint: "ffeeddccbbaa9988", Applied: 3, At: at.Add(time.Second)}))

	gens, err := repo.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, uint64(2), gens[0].Number)
	assert.Equal(t, "ffeeddccbbaa9988", gens[0].Fingerprint)
	assert.Equal(t, 12, gens[1].Applied)
}

func TestAuditRepository_InMulti(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	testutil.TruncateBalance(t, pool)
	repo := NewAuditRepository(pool)
	var rec audit.Recorder = audit.Multi{repo}

	e := audit.Entry{At: time.Now().UTC(), Player: "carol", PlayerID: 3, Unit: "Shrimp", Key: "move_speed_mult", Old: "-", New: "1.1"}
	require.NoError(t, rec.Record(context.Background(), e))

	got, err := repo.ByUnit(context.Background(), "Shrimp")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRunMigrations_IsRepeatable(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	version, err := RunMigrations(context.Background(), pool.Config().ConnString())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version, "already migrated schema stays at the latest version")

	d, err := New(context.Background(), pool.Config().ConnString())
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Generations().RecordGeneration(context.Background(), balance.Generation{Number: 9, Fingerprint: "x", At: time.Now()}))
	gens, err := d.Generations().Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, uint64(9), gens[0].Number)
}
