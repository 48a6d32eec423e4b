package docstore

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/udisondev/unitbalance/internal/balance"
)

// NoteModified marks units edited through the admin surface.
const NoteModified = "modified via !b"

// integerKeys are written without a fractional part.
var integerKeys = map[string]bool{
	balance.KeyMinTier:        true,
	balance.KeyBuildRadius:    true,
	balance.KeyTargetDistance: true,
	balance.KeyFowDistance:    true,
}

// FormatParam renders value the way WriteParam stores it for key.
func FormatParam(key string, value float64) string {
	if integerKeys[key] {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(math.Round(value*1e4)/1e4, 'f', -1, 64)
}

// WriteParam sets units.<unit>.<key> in the active document and returns the previous raw value, or "-".
// The unit object is created when missing and tagged with a _note.
func (s *Store) WriteParam(unit, key string, value float64) (string, error) {
	if unit == "" || key == "" {
		return "", ErrInvalidName
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("%s.%s = %v: %w", unit, key, value, ErrInvalidDocument)
	}
	data, err := s.document()
	if err != nil {
		return "", err
	}

	base := balance.KeyUnits + "." + EscapePath(unit)
	path := base + "." + EscapePath(key)
	old := "-"
	if cur := gjson.GetBytes(data, path); cur.Exists() {
		old = cur.Raw
	}

	out, err := sjson.SetRawBytes(data, path, []byte(FormatParam(key, value)))
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	out, err = sjson.SetBytes(out, base+"._note", NoteModified)
	if err != nil {
		return "", fmt.Errorf("writing %s note: %w", unit, err)
	}
	if err := WriteAtomic(s.active, out); err != nil {
		return "", err
	}
	s.log.Info("balance parameter written", "unit", unit, "key", key, "old", old, "new", FormatParam(key, value))
	return old, nil
}

// WriteTechTier sets tech_time.tier_<tier> to seconds rounded to an integer.
func (s *Store) WriteTechTier(tier int, seconds float64) (string, error) {
	if tier < 1 || tier > balance.MaxTechTier {
		return "", fmt.Errorf("tier %d: %w", tier, ErrInvalidName)
	}
	data, err := s.document()
	if err != nil {
		return "", err
	}
	path := balance.KeyTechTime + ".tier_" + strconv.Itoa(tier)
	old := "-"
	if cur := gjson.GetBytes(data, path); cur.Exists() {
		old = cur.Raw
	}
	out, err := sjson.SetRawBytes(data, path, []byte(strconv.FormatInt(int64(math.Round(seconds)), 10)))
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := WriteAtomic(s.active, out); err != nil {
		return "", err
	}
	return old, nil
}

// WriteBool sets a top-level toggle.
func (s *Store) WriteBool(key string, v bool) (string, error) {
	if key == "" {
		return "", ErrInvalidName
	}
	data, err := s.document()
	if err != nil {
		return "", err
	}
	path := EscapePath(key)
	old := "-"
	if cur := gjson.GetBytes(data, path); cur.Exists() {
		old = cur.Raw
	}
	out, err := sjson.SetBytes(data, path, v)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	if err := WriteAtomic(s.active, out); err != nil {
		return "", err
	}
	return old, nil
}

func (s *Store) document() ([]byte, error) {
	data, err := s.Read()
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%s: %w", s.active, ErrInvalidDocument)
	}
	return data, nil
}

// EscapePath escapes gjson/sjson path metacharacters in a single key.
func EscapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
