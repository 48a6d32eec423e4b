package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCmd struct {
	names    []string
	required int32
	calls    int
	lastArgs []string
	err      error
}

func (c *stubCmd) Names() []string           { return c.names }
func (c *stubCmd) RequiredAccessLevel() int32 { return c.required }
func (c *stubCmd) Handle(_ context.Context, op *Operator, args []string) error {
	c.calls++
	c.lastArgs = args
	if c.err != nil {
		return c.err
	}
	op.Reply("ok: %s", args[0])
	return nil
}

func TestHandler_RegisterAndCount(t *testing.T) {
	h := NewHandler(nil)
	assert.Equal(t, 0, h.Count())

	h.Register(&stubCmd{names: []string{"Rebalance", "rb"}, required: 1})
	assert.Equal(t, 2, h.Count())
}

func TestHandler_Dispatch(t *testing.T) {
	h := NewHandler(nil)
	cmd := &stubCmd{names: []string{"b"}, required: LevelModerator}
	h.Register(cmd)

	var streamed []string
	op := NewOperator("gm", 7, LevelAdmin, func(s string) { streamed = append(streamed, s) })

	require.True(t, h.Handle(context.Background(), op, "!B set Tank damage_mult 1.5"))
	assert.Equal(t, 1, cmd.calls)
	assert.Equal(t, []string{"B", "set", "Tank", "damage_mult", "1.5"}, cmd.lastArgs)
	assert.Equal(t, "ok: B", op.LastReply())
	assert.Equal(t, op.Replies(), streamed)
}

func TestHandler_UnknownCommand(t *testing.T) {
	h := NewHandler(nil)
	op := NewOperator("gm", 1, LevelAdmin, nil)

	assert.False(t, h.Handle(context.Background(), op, "nope"))
	assert.Equal(t, "Unknown command: nope", op.LastReply())
	assert.False(t, h.Handle(context.Background(), op, "   "))
}

func TestHandler_AccessLevel(t *testing.T) {
	h := NewHandler(nil)
	cmd := &stubCmd{names: []string{"rebalance"}, required: LevelAdmin}
	h.Register(cmd)

	user := NewOperator("player", 2, LevelUser, nil)
	assert.False(t, h.Handle(context.Background(), user, "rebalance"))
	assert.Empty(t, user.Replies())

	mod := NewOperator("mod", 3, LevelModerator, nil)
	assert.False(t, h.Handle(context.Background(), mod, "rebalance"))
	assert.Contains(t, mod.LastReply(), "need 100, have 1")
	assert.Equal(t, 0, cmd.calls)
}

func TestHandler_CommandError(t *testing.T) {
	h := NewHandler(nil)
	h.Register(&stubCmd{names: []string{"b"}, required: 1, err: errors.New("boom")})
	op := NewOperator("gm", 1, LevelAdmin, nil)

	assert.True(t, h.Handle(context.Background(), op, "b"))
	assert.Equal(t, "Command error: boom", op.LastReply())
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Moderator", LevelName(2))
	assert.Equal(t, "Admin", LevelName(100))
}
