package balance

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/blake2b"
)

// ErrNotObject is wrapped by ParseError when the document root is not a JSON object.
var ErrNotObject = errors.New("document root is not an object")

// ErrMalformed is wrapped by ParseError when the document is not valid JSON.
var ErrMalformed = errors.New("malformed json")

// ParseError reports a balance document that could not be read.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing balance document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// slotted lists the keys that accept pri_/sec_ variants.
var slotted = []string{
	KeyDamage, KeyRange, KeyProjSpeed, KeyProjLifetime,
	KeyAccuracy, KeyMagazine, KeyFireRate, KeyReload,
}

// Parse reads a balance document into a new SessionState.
// Unknown keys and non-numeric values are ignored.
func Parse(data []byte) (*SessionState, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Err: ErrMalformed}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Err: ErrNotObject}
	}

	st := NewSessionState()
	st.Loaded = true
	st.Fingerprint = Fingerprint(data)
	st.Enabled = boolOr(root.Get(KeyEnabled), true)
	st.DumpFields = boolOr(root.Get(KeyDumpFields), false)
	st.ShrimpDisableAim = boolOr(root.Get(KeyShrimpDisableAim), false)
	st.AdditionalSpawn = boolOr(root.Get(KeyAdditionalSpawn), false)

	tables := st.tableByKey()

	root.Get(KeyUnits).ForEach(func(k, unit gjson.Result) bool {
		name := k.String()
		if !unit.IsObject() {
			return true
		}
		if name == TeleportUnit {
			st.TeleportCooldown = numberOr(unit.Get(TeleportCooldown), -1)
			st.TeleportDuration = numberOr(unit.Get(TeleportDuration), -1)
			return true
		}
		if strings.HasPrefix(name, "_") {
			return true
		}
		parseUnit(st, tables, name, unit)
		return true
	})

	techs := root.Get(KeyTechTime)
	for tier := 1; tier <= MaxTechTier; tier++ {
		v := techs.Get("tier_" + strconv.Itoa(tier))
		if v.Type == gjson.Number {
			st.TechTimes[tier] = v.Float()
		}
	}

	return st, nil
}

func parseUnit(st *SessionState, tables map[string]Table, name string, unit gjson.Result) {
	for key, t := range tables {
		if v := unit.Get(key); v.Type == gjson.Number {
			t.put(name, v.Float())
		}
	}
	for _, key := range slotted {
		t := tables[key]
		if v := unit.Get("pri_" + key); v.Type == gjson.Number {
			t.put(slotKey(SlotPrimary, name), v.Float())
		}
		if v := unit.Get("sec_" + key); v.Type == gjson.Number {
			t.put(slotKey(SlotSecondary, name), v.Float())
		}
	}

	st.TargetDistance.put(name, numberOr(unit.Get(KeyTargetDistance), -1))
	st.FowDistance.put(name, numberOr(unit.Get(KeyFowDistance), -1))
	st.BuildRadius.put(name, numberOr(unit.Get(KeyBuildRadius), -1))
	if v := unit.Get(KeyMinTier); v.Type == gjson.Number && v.Int() >= 0 {
		st.MinTier[name] = int(v.Int())
	}
	// dispense_timeout is global; the last unit that sets it wins.
	if v := unit.Get(KeyDispenseTimeout); v.Type == gjson.Number && v.Float() >= 0 {
		st.DispenseTimeout = v.Float()
	}

	projs := unit.Get(KeyProjectiles)
	if !projs.IsObject() {
		return
	}
	overrides := ProjectileOverrides{}
	projs.ForEach(func(pk, fields gjson.Result) bool {
		vals := make(map[string]float64)
		fields.ForEach(func(fk, fv gjson.Result) bool {
			if fv.Type == gjson.Number {
				vals[fk.String()] = fv.Float()
			}
			return true
		})
		if len(vals) > 0 {
			overrides[strings.ToLower(pk.String())] = vals
		}
		return true
	})
	if len(overrides) > 0 {
		st.Projectiles[name] = overrides
	}
}

func (s *SessionState) tableByKey() map[string]Table {
	return map[string]Table{
		KeyDamage:             s.Damage,
		KeyHealth:             s.Health,
		KeyCost:               s.Cost,
		KeyBuildTime:          s.BuildTime,
		KeyRange:              s.Range,
		KeyProjSpeed:          s.ProjSpeed,
		KeyProjLifetime:       s.ProjLifetime,
		KeyReload:             s.Reload,
		KeyAccuracy:           s.Accuracy,
		KeyMagazine:           s.Magazine,
		KeyFireRate:           s.FireRate,
		KeyMoveSpeed:          s.MoveSpeed,
		KeyTurboSpeed:         s.TurboSpeed,
		KeyStrafeSpeed:        s.StrafeSpeed,
		KeyFlySpeed:           s.FlySpeed,
		KeyTurnRadius:         s.TurnRadius,
		KeyJumpSpeed:          s.JumpSpeed,
		KeyVisibleEventRadius: s.VisibleEventRadius,
	}
}

func boolOr(r gjson.Result, def bool) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return def
}

func numberOr(r gjson.Result, def float64) float64 {
	if r.Type != gjson.Number {
		return def
	}
	return r.Float()
}

// Fingerprint returns a short digest of a document, used to tell generations apart in logs.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
