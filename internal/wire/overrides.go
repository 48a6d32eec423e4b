// Package wire encodes override messages sent to observers.
package wire

import (
	"errors"
	"fmt"

	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/overridesync"
)

// OpOverrides is the opcode of a full override-set message.
const OpOverrides byte = 0x4F

const (
	flagEnabled byte = 1 << iota
	flagQueued
)

var (
	// ErrUnknownOpcode is returned when a message does not start with OpOverrides.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrUnknownKind is returned for a member value kind the codec does not know.
	ErrUnknownKind = errors.New("unknown value kind")
)

// EncodeOverrides encodes groups into one message. The returned slice is owned by the caller.
//
//	byte   opcode
//	int32  group count
//	  string target
//	  int16  member count
//	    string name
//	    byte   kind
//	    value  double | long | byte
//	    byte   flags
func EncodeOverrides(groups []overridesync.Group) ([]byte, error) {
	w := Get()
	defer w.Put()

	_ = w.WriteByte(OpOverrides)
	w.WriteInt(int32(len(groups)))
	for _, g := range groups {
		w.WriteString(g.Target)
		w.WriteShort(int16(len(g.Members)))
		for _, m := range g.Members {
			w.WriteString(m.Name)
			_ = w.WriteByte(byte(m.Value.Kind()))
			switch m.Value.Kind() {
			case model.KindFloat:
				w.WriteDouble(m.Value.Float())
			case model.KindInt:
				w.WriteLong(m.Value.Int())
			case model.KindBool:
				w.WriteBool(m.Value.Bool())
			default:
				return nil, fmt.Errorf("encoding %s.%s: %w", g.Target, m.Name, ErrUnknownKind)
			}
			var flags byte
			if m.Enabled {
				flags |= flagEnabled
			}
			if m.Queued {
				flags |= flagQueued
			}
			_ = w.WriteByte(flags)
		}
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	return out, nil
}

// DecodeOverrides decodes a message produced by EncodeOverrides.
func DecodeOverrides(data []byte) ([]overridesync.Group, error) {
	r := NewReader(data)
	op, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading opcode: %w", err)
	}
	if op != OpOverrides {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, op)
	}
	count, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading group count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("negative group count %d", count)
	}

	groups := make([]overridesync.Group, 0, min(int(count), 256))
	for i := 0; i < int(count); i++ {
		g, err := decodeGroup(r)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func decodeGroup(r *Reader) (overridesync.Group, error) {
	var g overridesync.Group
	target, err := r.ReadString()
	if err != nil {
		return g, err
	}
	g.Target = target

	n, err := r.ReadShort()
	if err != nil {
		return g, err
	}
	for j := 0; j < int(n); j++ {
		var m overridesync.Member
		if m.Name, err = r.ReadString(); err != nil {
			return g, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return g, err
		}
		switch model.Kind(kind) {
		case model.KindFloat:
			v, err := r.ReadDouble()
			if err != nil {
				return g, err
			}
			m.Value = model.Float(v)
		case model.KindInt:
			v, err := r.ReadLong()
			if err != nil {
				return g, err
			}
			m.Value = model.Int(v)
		case model.KindBool:
			v, err := r.ReadBool()
			if err != nil {
				return g, err
			}
			m.Value = model.Bool(v)
		default:
			return g, fmt.Errorf("%s: %w %d", m.Name, ErrUnknownKind, kind)
		}
		flags, err := r.ReadByte()
		if err != nil {
			return g, err
		}
		m.Enabled = flags&flagEnabled != 0
		m.Queued = flags&flagQueued != 0
		g.Members = append(g.Members, m)
	}
	return g, nil
}
