package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Operator is whoever issued a command: a connected player or the server console.
type Operator struct {
	Name        string
	ID          int64
	AccessLevel int32

	mu      sync.Mutex
	replies []string
	out     func(string)
}

// NewOperator creates an operator. out, if non-nil, receives every reply as it is sent.
func NewOperator(name string, id int64, level int32, out func(string)) *Operator {
	return &Operator{Name: name, ID: id, AccessLevel: level, out: out}
}

// Reply sends a line back to the operator.
func (o *Operator) Reply(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	o.mu.Lock()
	o.replies = append(o.replies, msg)
	out := o.out
	o.mu.Unlock()
	if out != nil {
		out(msg)
	}
}

// Replies returns a copy of every reply sent so far.
func (o *Operator) Replies() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.replies...)
}

// LastReply returns the most recent reply, or "".
func (o *Operator) LastReply() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.replies) == 0 {
		return ""
	}
	return o.replies[len(o.replies)-1]
}

// Command is an operator command.
type Command interface {
	// Handle executes the command. args includes the command name at [0].
	Handle(ctx context.Context, op *Operator, args []string) error
	// Names returns every name the command answers to.
	Names() []string
	// RequiredAccessLevel returns the minimum access level to use this command.
	RequiredAccessLevel() int32
}

// Handler dispatches commands by name.
// Commands are registered once at startup, then read-only.
type Handler struct {
	mu   sync.RWMutex
	cmds map[string]Command // lowercase name → Command
	log  *slog.Logger
}

// NewHandler creates an empty handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cmds: make(map[string]Command, 8),
		log:  logger,
	}
}

// Register adds cmd under all its names, lowercased.
func (h *Handler) Register(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.cmds[strings.ToLower(name)] = cmd
	}
}

// Count returns the number of registered names.
func (h *Handler) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cmds)
}

// Handle runs the command in text. A leading "!" or "/" is stripped.
// Returns true if a command was found and executed.
func (h *Handler) Handle(ctx context.Context, op *Operator, text string) bool {
	text = strings.TrimLeft(strings.TrimSpace(text), "!/")
	if text == "" {
		return false
	}

	parts := strings.Fields(text)
	name := strings.ToLower(parts[0])

	h.mu.RLock()
	cmd, ok := h.cmds[name]
	h.mu.RUnlock()

	if !ok {
		op.Reply("Unknown command: %s", name)
		return false
	}

	if op.AccessLevel <= LevelUser {
		h.log.Warn("unauthorized command attempt",
			"operator", op.Name,
			"command", name,
			"accessLevel", op.AccessLevel)
		return false
	}

	if op.AccessLevel < cmd.RequiredAccessLevel() {
		op.Reply("Insufficient access level for %s (need %d, have %d)",
			name, cmd.RequiredAccessLevel(), op.AccessLevel)
		h.log.Warn("command access denied",
			"operator", op.Name,
			"command", name,
			"required", cmd.RequiredAccessLevel(),
			"actual", op.AccessLevel)
		return false
	}

	h.log.Info("operator command", "operator", op.Name, "command", text)

	if err := cmd.Handle(ctx, op, parts); err != nil {
		op.Reply("Command error: %s", err)
		h.log.Error("operator command failed",
			"operator", op.Name,
			"command", text,
			"error", err)
	}
	return true
}
