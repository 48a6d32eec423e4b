package override_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/udisondev/unitbalance/internal/model"
	"github.com/udisondev/unitbalance/internal/override"
	"github.com/udisondev/unitbalance/internal/override/mocks"
)

func newDamageManager() *model.Asset {
	return model.NewAsset("Gunship", model.AssetDamageManager, model.NewRecord().Declare("Health", model.Float(400)))
}

func TestCache_BaselineIsFirstObserved(t *testing.T) {
	c := override.NewCache()
	dm := newDamageManager()

	v, err := c.Baseline(dm, "Health")
	require.NoError(t, err)
	assert.Equal(t, 400.0, v.Float())

	require.NoError(t, dm.Set("Health", model.Float(800)))
	v, err = c.Baseline(dm, "Health")
	require.NoError(t, err)
	assert.Equal(t, 400.0, v.Float(), "baseline must not follow the current value")
	assert.Equal(t, 1, c.Len())

	_, err = c.Baseline(dm, "Missing")
	assert.ErrorIs(t, err, model.ErrAttributeNotFound)
	assert.Equal(t, 1, c.Len(), "failed reads are not cached")

	assert.Equal(t, 1, c.Restore())
	cur, _ := dm.Get("Health")
	assert.Equal(t, 400.0, cur.Float())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestSelect(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := override.NewCache()

	assert.Equal(t, override.ModeDirect, override.Select(nil, cache, slog.Default()).Mode())
	assert.Equal(t, override.ModeCapability, override.Select(mocks.NewMockCapability(ctrl), cache, nil).Mode())
}

func TestCapabilityStore_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	capability := mocks.NewMockCapability(ctrl)
	cache := override.NewCache()
	store := override.NewCapabilityStore(capability, cache, slog.Default())

	dm := newDamageManager()
	b := override.Binding{Target: override.AssetTarget("DamageManagerData_Gunship"), Member: "Health", Local: dm, Family: override.FamilyHealth}

	capability.EXPECT().Set("A:DamageManagerData_Gunship.asset", "Health", model.Float(600), true, false).Return(true)

	res := store.Apply(b, model.Float(600))
	assert.Equal(t, override.Result{OK: true, Synced: true}, res)

	orig, ok := cache.Original(dm, "Health")
	require.True(t, ok, "baseline recorded before the write")
	assert.Equal(t, 400.0, orig.Float())
}

func TestCapabilityStore_HealthFallsBackToDirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	capability := mocks.NewMockCapability(ctrl)
	cache := override.NewCache()
	store := override.NewCapabilityStore(capability, cache, slog.Default())

	dm := newDamageManager()
	b := override.Binding{Target: "A:DamageManagerData_Gunship.asset", Member: "Health", Local: dm, Family: override.FamilyHealth}

	capability.EXPECT().Set(gomock.Any(), "Health", gomock.Any(), true, false).Return(false)

	res := store.Apply(b, model.Float(600))
	assert.Equal(t, override.Result{OK: true, Synced: false}, res)

	v, _ := dm.Get("Health")
	assert.Equal(t, 600.0, v.Float())

	// revert restores the directly written attribute
	capability.EXPECT().RevertAll(true, false)
	store.RevertAll()
	v, _ = dm.Get("Health")
	assert.Equal(t, 400.0, v.Float())
}

func TestCapabilityStore_GenericDoesNotFallBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	capability := mocks.NewMockCapability(ctrl)
	store := override.NewCapabilityStore(capability, override.NewCache(), slog.Default())

	comp := model.NewComponent(model.KindVehicleWheeled, model.NewRecord().Declare("TurningCircleRadius", model.Float(10)))
	b := override.Binding{Target: "A:Tank.asset", Member: "TurningCircleRadius", Local: comp}

	capability.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false)

	res := store.Apply(b, model.Float(20))
	assert.False(t, res.OK)

	v, _ := comp.Get("TurningCircleRadius")
	assert.Equal(t, 10.0, v.Float(), "generic family must stay untouched on rejection")
}

func TestCapabilityStore_BypassNeverCallsCapability(t *testing.T) {
	ctrl := gomock.NewController(t)
	capability := mocks.NewMockCapability(ctrl)
	store := override.NewCapabilityStore(capability, override.NewCache(), slog.Default())

	sub := model.NewComponent(model.KindCreatureAttack, model.NewRecord().Declare("Damage", model.Float(30)))
	res := store.Bypass(override.Binding{Member: "Damage", Local: sub}, model.Float(45))
	assert.Equal(t, override.Result{OK: true}, res)
}

func TestDirectStore(t *testing.T) {
	cache := override.NewCache()
	store := override.NewDirectStore(cache, slog.Default())

	comp := model.NewComponent(model.KindVehicleTurret, model.NewRecord().
		Declare("PrimaryReloadTime", model.Float(2)).
		Declare("PrimaryMagazineSize", model.Int(10)))

	res := store.Apply(override.Binding{Member: "PrimaryReloadTime", Local: comp}, model.Float(3))
	assert.True(t, res.OK)
	assert.False(t, res.Synced)

	res = store.Apply(override.Binding{Member: "PrimaryMagazineSize", Local: comp}, model.Float(3))
	assert.False(t, res.OK, "type mismatch is skipped")

	res = store.Apply(override.Binding{Member: "Nope", Local: comp}, model.Float(3))
	assert.False(t, res.OK)

	store.RevertAll()
	v, _ := comp.Get("PrimaryReloadTime")
	assert.Equal(t, 2.0, v.Float())
}
