package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/udisondev/unitbalance/internal/admin"
	"github.com/udisondev/unitbalance/internal/applier"
	"github.com/udisondev/unitbalance/internal/audit"
	"github.com/udisondev/unitbalance/internal/docstore"
	"github.com/udisondev/unitbalance/internal/engine"
	"github.com/udisondev/unitbalance/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

type stubBalancer struct {
	reloads  int
	defaults int
	report   engine.ReloadReport
	baseline map[string]model.Value
}

func (b *stubBalancer) Reload(context.Context) engine.ReloadReport {
	b.reloads++
	return b.report
}

func (b *stubBalancer) ReloadDefault(context.Context) engine.ReloadReport {
	b.defaults++
	return engine.ReloadReport{Propagated: 4, Scheduled: 2}
}

func (b *stubBalancer) BaselineValue(unit, kind, attr string) (model.Value, error) {
	v, ok := b.baseline[unit+"/"+kind+"/"+attr]
	if !ok {
		return model.Value{}, engine.ErrUnknownUnit
	}
	return v, nil
}

type memAudit struct {
	entries []audit.Entry
	err     error
}

func (m *memAudit) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return m.err
}

type fixture struct {
	handler *admin.Handler
	store   *docstore.Store
	bal     *stubBalancer
	audit   *memAudit
	op      *admin.Operator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		handler: admin.NewHandler(nil),
		store:   docstore.New(filepath.Join(dir, "active.json"), filepath.Join(dir, "saved"), func() time.Time { return fixedNow }, nil),
		bal:     &stubBalancer{baseline: map[string]model.Value{}},
		audit:   &memAudit{},
		op:      admin.NewOperator("gm", 42, admin.LevelAdmin, nil),
	}
	_, err := f.store.EnsureDefault()
	require.NoError(t, err)
	RegisterAll(f.handler, f.bal, f.store, f.audit, func() time.Time { return fixedNow })
	return f
}

func (f *fixture) run(t *testing.T, text string) {
	t.Helper()
	require.True(t, f.handler.Handle(context.Background(), f.op, text), "command %q not handled", text)
}

func (f *fixture) doc(t *testing.T) []byte {
	t.Helper()
	data, err := f.store.Read()
	require.NoError(t, err)
	return data
}

func TestRegisterAll(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 3, f.handler.Count())
}

func TestRebalance(t *testing.T) {
	f := newFixture(t)
	f.bal.report = engine.ReloadReport{
		Generation: 3,
		Enabled:    true,
		Summary:    applier.Summary{{Applier: "damage", Touched: 5}},
		Propagated: 2,
		Scheduled:  1,
	}

	f.run(t, "!rebalance")
	assert.Equal(t, 1, f.bal.reloads)
	assert.Equal(t, "Config generation 3 applied: 5 values, 2 live objects, syncing 1 observers.", f.op.LastReply())

	f.run(t, "!rebalance default")
	assert.Equal(t, 1, f.bal.defaults)
	assert.Contains(t, f.op.LastReply(), "Vanilla defaults restored")

	f.run(t, "rebalance bogus")
	assert.Equal(t, "Command error: usage: rebalance [default]", f.op.LastReply())
}

func TestRebalance_LoadError(t *testing.T) {
	f := newFixture(t)
	f.bal.report = engine.ReloadReport{Generation: 2, LoadErr: errors.New("bad json")}

	f.run(t, "rebalance")
	assert.Equal(t, "Config failed to load, overrides disabled: bad json", f.op.LastReply())
}

func TestBalance_Set(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b set Hover Bike damage_mult 1.23456")
	doc := f.doc(t)
	assert.Equal(t, "1.2346", gjson.GetBytes(doc, "units.Hover Bike.damage_mult").Raw)
	assert.Equal(t, docstore.NoteModified, gjson.GetBytes(doc, "units.Hover Bike._note").String())
	assert.Equal(t, "Hover Bike damage_mult: - -> 1.2346. Use rebalance to apply.", f.op.LastReply())

	f.run(t, "b set Hover Bike min_tier 3.7")
	assert.Equal(t, "3", gjson.GetBytes(f.doc(t), "units.Hover Bike.min_tier").Raw)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, audit.Entry{
		At: fixedNow, Player: "gm", PlayerID: 42,
		Unit: "Hover Bike", Key: "damage_mult", Old: "-", New: "1.2346",
	}, f.audit.entries[0])
	assert.Zero(t, f.bal.reloads)
}

func TestBalance_SetErrors(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b set Tank damage_mult")
	assert.Contains(t, f.op.LastReply(), "usage: b set")

	f.run(t, "b set Tank damage_mult lots")
	assert.Contains(t, f.op.LastReply(), `invalid value "lots"`)
	assert.Empty(t, f.audit.entries)
}

func TestBalance_AuditFailureStillWrites(t *testing.T) {
	f := newFixture(t)
	f.audit.err = errors.New("db down")

	f.run(t, "b set Tank health_mult 2")
	assert.Equal(t, "2", gjson.GetBytes(f.doc(t), "units.Tank.health_mult").Raw)
	replies := f.op.Replies()
	require.Len(t, replies, 2)
	assert.Equal(t, "Warning: audit entry not stored: db down", replies[0])
}

func TestBalance_Tech(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b tech 2 45.6")
	assert.Equal(t, "46", gjson.GetBytes(f.doc(t), "tech_time.tier_2").Raw)
	assert.Equal(t, "Tier 2 research time: 30 -> 46s. Use rebalance to apply.", f.op.LastReply())
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "tier_2", f.audit.entries[0].Key)

	f.run(t, "b tech 9 10")
	assert.Contains(t, f.op.LastReply(), "Command error")
}

func TestBalance_Toggle(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b toggle shrimp_disable_aim true")
	assert.True(t, gjson.GetBytes(f.doc(t), "shrimp_disable_aim").Bool())

	f.run(t, "b toggle description true")
	assert.Contains(t, f.op.LastReply(), `unknown toggle "description"`)

	f.run(t, "b toggle enabled maybe")
	assert.Contains(t, f.op.LastReply(), `invalid flag "maybe"`)
}

func TestBalance_SaveListLoad(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b list")
	assert.Equal(t, "No saved configs.", f.op.LastReply())

	f.run(t, "b set Tank damage_mult 2")
	f.run(t, "b save tank buff")
	assert.Equal(t, "Saved as 202603011230_tank_buff.json", f.op.LastReply())

	f.run(t, "b reset")
	assert.False(t, gjson.GetBytes(f.doc(t), "units.Tank").Exists())

	f.run(t, "b list")
	assert.Equal(t, "1. 202603011230_tank_buff.json", f.op.LastReply())

	f.run(t, "b load 202603011230_tank_buff.json")
	assert.Equal(t, "2", gjson.GetBytes(f.doc(t), "units.Tank.damage_mult").Raw)

	f.run(t, "b load ../escape.json")
	assert.Contains(t, f.op.LastReply(), "Command error")
}

func TestBalance_Base(t *testing.T) {
	f := newFixture(t)
	f.bal.baseline["Heavy Tank/VehicleData/Health"] = model.Float(1800)

	f.run(t, "b base Heavy Tank VehicleData Health")
	assert.Equal(t, "Heavy Tank VehicleData.Health vanilla = 1800", f.op.LastReply())

	f.run(t, "b base Nope VehicleData Health")
	assert.Contains(t, f.op.LastReply(), engine.ErrUnknownUnit.Error())
}

func TestBalance_Usage(t *testing.T) {
	f := newFixture(t)

	f.run(t, "b")
	assert.Equal(t, "Command error: "+balanceUsage, f.op.LastReply())
	f.run(t, "b frobnicate")
	assert.Equal(t, "Command error: "+balanceUsage, f.op.LastReply())
}

func TestBalance_SubcommandUsage(t *testing.T) {
	for line, want := range map[string]string{
		"b tech 2":          "usage: b tech <tier> <seconds>",
		"b toggle enabled":  "usage: b toggle <key> <true|false>",
		"b load":            "usage: b load <file>",
		"b base Tank":       "usage: b base <unit> <kind> <attr>",
		"rebalance vanilla": "usage: rebalance [default]",
	} {
		t.Run(line, func(t *testing.T) {
			f := newFixture(t)
			f.run(t, line)
			assert.Equal(t, "Command error: "+want, f.op.LastReply())
		})
	}
}
