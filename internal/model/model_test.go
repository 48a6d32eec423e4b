package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_GetSet(t *testing.T) {
	r := NewRecord().
		Declare("AimDistance", Float(100)).
		Declare("PrimaryMagazineSize", Int(10)).
		Inherit("MoveSpeed", Float(5))

	v, err := r.Get("AimDistance")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v.Float())

	require.NoError(t, r.Set("AimDistance", Float(120)))
	v, _ = r.Get("AimDistance")
	assert.Equal(t, 120.0, v.Float())

	err = r.Set("PrimaryMagazineSize", Float(3))
	assert.True(t, errors.Is(err, ErrTypeMismatch), "float into int attribute must fail")

	_, err = r.Get("Missing")
	assert.True(t, errors.Is(err, ErrAttributeNotFound))

	assert.True(t, r.Declared("AimDistance"))
	assert.False(t, r.Declared("MoveSpeed"))
	assert.Equal(t, []string{"AimDistance", "PrimaryMagazineSize", "MoveSpeed"}, r.Names())
}

func TestGetTyped(t *testing.T) {
	r := NewRecord().Declare("f", Float(1.5)).Declare("i", Int(2)).Declare("b", Bool(true))

	f, err := GetFloat(r, "f")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = GetFloat(r, "i")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	i, err := GetInt(r, "i")
	require.NoError(t, err)
	assert.Equal(t, int64(2), i)

	b, err := GetBool(r, "b")
	require.NoError(t, err)
	assert.True(t, b)
}

func TestComponent_CloneIsolatesAttributes(t *testing.T) {
	pd := NewAsset("ProjectileData_Bolt", AssetProjectile, NewRecord().Declare("m_fImpactDamage", Float(10)))
	sub := NewComponent(KindCreatureAttack, NewRecord().Declare("Damage", Float(20))).WithRef("AttackProjectileData", pd)
	c := NewComponent(KindCreatureDecapod, NewRecord().Declare("MoveSpeed", Float(4))).WithSub("AttackPrimary", sub)

	cp := c.Clone()
	require.NoError(t, cp.Set("MoveSpeed", Float(8)))
	cpSub, ok := cp.Sub("AttackPrimary")
	require.True(t, ok)
	require.NoError(t, cpSub.Set("Damage", Float(40)))

	v, _ := c.Get("MoveSpeed")
	assert.Equal(t, 4.0, v.Float())
	v, _ = sub.Get("Damage")
	assert.Equal(t, 20.0, v.Float())

	ref, ok := cpSub.Ref("AttackProjectileData")
	require.True(t, ok)
	assert.Same(t, pd, ref, "asset references are shared")
}

func TestNewInstance_ClonesComponents(t *testing.T) {
	tpl := NewTemplate("Tank_Heavy", "Heavy Tank").
		AddComponent(NewComponent(KindVehicleWheeled, NewRecord().Declare("TurningCircleRadius", Float(12))))

	inst := NewInstance(7, tpl, "Sol")
	assert.Equal(t, uint64(7), inst.ID())
	assert.Equal(t, "Sol", inst.Team())

	live, ok := inst.FirstComponent(KindVehicleWheeled)
	require.True(t, ok)
	tc, _ := tpl.FirstComponent(KindVehicleWheeled)
	assert.NotSame(t, tc, live)

	require.NoError(t, tc.Set("TurningCircleRadius", Float(24)))
	v, _ := live.Get("TurningCircleRadius")
	assert.Equal(t, 12.0, v.Float(), "live instance must not observe template edits")
}

func TestValue(t *testing.T) {
	assert.Equal(t, "1.25", Float(1.25).String())
	assert.Equal(t, "3", Int(3).String())
	assert.True(t, Int(3).Equal(Int(3)))
	assert.False(t, Int(3).Equal(Float(3)))
	assert.False(t, Value{}.IsValid())
	assert.Equal(t, 3.0, Int(3).Float())
}
