package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/udisondev/unitbalance/internal/overridesync"
	"github.com/udisondev/unitbalance/internal/wire"
)

// DefaultMaxMessageBytes is the largest override message the transport accepts.
const DefaultMaxMessageBytes = 2400

var (
	// ErrMessageTooLarge is returned when the encoded override set exceeds the message limit.
	ErrMessageTooLarge = errors.New("override message too large")
	// ErrUnknownObserver is returned for an observer that is not a host player.
	ErrUnknownObserver = errors.New("unknown observer")
)

// Player is a connected participant. The server player is the authoritative observer.
type Player struct {
	id     int64
	name   string
	server bool

	mu       sync.Mutex
	messages [][]byte
	observed map[string]map[string]overridesync.Member
}

// ObserverID returns the player id.
func (p *Player) ObserverID() int64 { return p.id }

// Name returns the player name.
func (p *Player) Name() string { return p.name }

// IsServer reports whether p is the authoritative participant.
func (p *Player) IsServer() bool { return p.server }

// Messages returns copies of every message received so far, oldest first.
func (p *Player) Messages() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.messages))
	for i, m := range p.messages {
		out[i] = append([]byte(nil), m...)
	}
	return out
}

// Observed returns the override state the player has seen, keyed by target then member.
func (p *Player) Observed() map[string]map[string]overridesync.Member {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]map[string]overridesync.Member, len(p.observed))
	for t, members := range p.observed {
		cp := make(map[string]overridesync.Member, len(members))
		for n, m := range members {
			cp[n] = m
		}
		out[t] = cp
	}
	return out
}

// receive decodes msg and merges it into the observed state.
// An empty set clears everything the player has observed.
func (p *Player) receive(msg []byte) error {
	groups, err := wire.DecodeOverrides(msg)
	if err != nil {
		return fmt.Errorf("decoding override message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	if len(groups) == 0 || p.observed == nil {
		p.observed = make(map[string]map[string]overridesync.Member)
	}
	for _, g := range groups {
		members, ok := p.observed[g.Target]
		if !ok {
			members = make(map[string]overridesync.Member)
			p.observed[g.Target] = members
		}
		for _, m := range g.Members {
			members[m.Name] = m
		}
	}
	return nil
}

// Transport serializes the visible override set into one message per call.
type Transport struct {
	set      overridesync.OverrideSet
	maxBytes int
}

// NewTransport creates a transport over set. maxBytes <= 0 selects DefaultMaxMessageBytes.
func NewTransport(set overridesync.OverrideSet, maxBytes int) *Transport {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMessageBytes
	}
	return &Transport{set: set, maxBytes: maxBytes}
}

// SendAll encodes the visible set and delivers it to observer.
func (t *Transport) SendAll(ctx context.Context, observer overridesync.Observer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := observer.(*Player)
	if !ok {
		return fmt.Errorf("observer %d: %w", observer.ObserverID(), ErrUnknownObserver)
	}
	return t.deliver(p)
}

func (t *Transport) deliver(p *Player) error {
	msg, err := wire.EncodeOverrides(t.set.Groups())
	if err != nil {
		return err
	}
	if len(msg) > t.maxBytes {
		return fmt.Errorf("%d bytes for player %d (limit %d): %w", len(msg), p.id, t.maxBytes, ErrMessageTooLarge)
	}
	return p.receive(msg)
}
