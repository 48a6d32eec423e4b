package balance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ResolvePrecedence(t *testing.T) {
	tbl := Table{}
	tbl.put("Tank", 1.5)
	tbl.put(slotKey(SlotPrimary, "Tank"), 2)

	assert.Equal(t, 2.0, tbl.Resolve("Tank", SlotPrimary), "slot key wins over shared key")
	assert.Equal(t, 1.5, tbl.Resolve("Tank", SlotSecondary), "shared key used when slot key absent")
	assert.Equal(t, 1.0, tbl.Resolve("Gunship", SlotPrimary), "absent key is neutral")
}

func TestTable_HasAny(t *testing.T) {
	tbl := Table{}
	tbl.put(slotKey(SlotSecondary, "Tank"), 0.5)
	tbl.put("Scout", 1.0005)

	assert.True(t, tbl.HasAny("Tank"))
	assert.False(t, tbl.HasAny("Scout"), "neutral values are not stored")
	assert.False(t, tbl.HasAny("Gunship"))
}

func TestAbsolute_Lookup(t *testing.T) {
	a := Absolute{}
	a.put("Tank", 250)
	a.put("Scout", -1)
	a.put("Zero", 0)

	v, ok := a.Lookup("Tank")
	assert.True(t, ok)
	assert.Equal(t, 250.0, v)

	_, ok = a.Lookup("Scout")
	assert.False(t, ok)

	_, ok = a.Lookup("Zero")
	assert.True(t, ok, "zero is a valid absolute")
}

func TestIsNeutral(t *testing.T) {
	assert.True(t, IsNeutral(1))
	assert.True(t, IsNeutral(1.001))
	assert.True(t, IsNeutral(0.9995))
	assert.False(t, IsNeutral(1.002))
	assert.False(t, IsNeutral(0))
}

func TestSlotForField(t *testing.T) {
	assert.Equal(t, SlotSecondary, SlotForField("SecondaryProjectileData"))
	assert.Equal(t, SlotPrimary, SlotForField("PrimaryProjectileData"))
	assert.Equal(t, SlotPrimary, SlotForField("ProjectileData"))
	assert.Equal(t, SlotSecondary, SlotForAttack("AttackSecondary"))
	assert.Equal(t, SlotPrimary, SlotForAttack("AttackPrimary"))
}

const sampleDoc = `{
  "enabled": true,
  "dump_fields": true,
  "shrimp_disable_aim": true,
  "tech_time": {"tier_1": 12, "tier_3": 40.5, "tier_9": 99},
  "units": {
    "_teleport": {"cooldown": 20, "duration": 3},
    "_comment": {"damage_mult": 9},
    "Gunship": {"damage_mult": 1.5, "health_mult": 1.0, "unknown_key": 4},
    "Tank": {"pri_range_mult": 1.2, "sec_damage_mult": 0.8, "min_tier": 2, "target_distance": 300},
    "Dispenser Unit": {"dispense_timeout": 10},
    "Scout": {
      "projectiles": {"ProjectileData_Scout_MG": {"m_fImpactDamage": 42, "bogus": "x"}},
      "move_speed_mult": "fast"
    }
  }
}`

func TestParse(t *testing.T) {
	st, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.True(t, st.Loaded)
	assert.True(t, st.Enabled)
	assert.True(t, st.DumpFields)
	assert.True(t, st.ShrimpDisableAim)
	assert.False(t, st.AdditionalSpawn)
	assert.NotEmpty(t, st.Fingerprint)

	assert.Equal(t, 1.5, st.Damage.Resolve("Gunship", SlotPrimary))
	assert.False(t, st.Health.HasAny("Gunship"), "neutral health_mult must not be stored")
	assert.Equal(t, 1.2, st.Range.Resolve("Tank", SlotPrimary))
	assert.Equal(t, 1.0, st.Range.Resolve("Tank", SlotSecondary))
	assert.Equal(t, 0.8, st.Damage.Resolve("Tank", SlotSecondary))

	tier, ok := st.MinTierFor("Tank")
	assert.True(t, ok)
	assert.Equal(t, 2, tier)

	td, ok := st.TargetDistance.Lookup("Tank")
	assert.True(t, ok)
	assert.Equal(t, 300.0, td)

	assert.Equal(t, 10.0, st.DispenseTimeout)
	assert.Equal(t, 20.0, st.TeleportCooldown)
	assert.Equal(t, 3.0, st.TeleportDuration)

	assert.False(t, st.Damage.HasAny("_comment"), "pseudo-units are skipped")
	assert.False(t, st.MoveSpeed.HasAny("Scout"), "non-numeric values are ignored")

	fields, ok := st.ProjectileFields("Scout", "projectiledata_scout_mg")
	require.True(t, ok, "projectile lookup is case-insensitive")
	assert.Equal(t, map[string]float64{"m_fImpactDamage": 42}, fields)

	t1, ok := st.TechTime(1)
	assert.True(t, ok)
	assert.Equal(t, 12.0, t1)
	t3, _ := st.TechTime(3)
	assert.Equal(t, 40.5, t3)
	_, ok = st.TechTime(2)
	assert.False(t, ok)
	_, ok = st.TechTime(9)
	assert.False(t, ok, "tiers above the maximum are ignored")

	assert.ElementsMatch(t, []string{"Gunship", "Tank", "Scout"}, st.Units())
}

func TestParse_Defaults(t *testing.T) {
	st, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, st.Enabled, "enabled defaults to true")
	assert.Equal(t, -1.0, st.TeleportCooldown)
	assert.Equal(t, -1.0, st.DispenseTimeout)
	assert.True(t, st.Active())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", `{"units": {`, ErrMalformed},
		{"array root", `[1, 2]`, ErrNotObject},
		{"empty", ``, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint([]byte(sampleDoc))
	b := Fingerprint([]byte(sampleDoc))
	c := Fingerprint([]byte(`{}`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestDisabled(t *testing.T) {
	st := Disabled()
	assert.False(t, st.Enabled)
	assert.False(t, st.Active())
}
