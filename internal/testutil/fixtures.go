package testutil

import (
	"strings"

	"github.com/udisondev/unitbalance/internal/model"
)

// Catalog is a small set of templates and assets shared by tests.
// Every call to NewCatalog returns fresh objects, so tests never observe each other's writes.
type Catalog struct {
	Templates []*model.Template
	Assets    []*model.Asset
}

// Template returns a template by display name, nil when absent.
func (c *Catalog) Template(display string) *model.Template {
	for _, t := range c.Templates {
		if t.DisplayName() == display {
			return t
		}
	}
	return nil
}

// Asset returns an asset by name, nil when absent.
func (c *Catalog) Asset(name string) *model.Asset {
	for _, a := range c.Assets {
		if strings.EqualFold(a.Name(), name) {
			return a
		}
	}
	return nil
}

// Projectiles returns every ProjectileData asset.
func (c *Catalog) Projectiles() []*model.Asset {
	var out []*model.Asset
	for _, a := range c.Assets {
		if a.Kind() == model.AssetProjectile {
			out = append(out, a)
		}
	}
	return out
}

func (c *Catalog) asset(a *model.Asset) *model.Asset {
	c.Assets = append(c.Assets, a)
	return a
}

func (c *Catalog) template(t *model.Template) *model.Template {
	c.Templates = append(c.Templates, t)
	return t
}

func projectile(name string, impact, speed, lifetime, ver float64, instant bool) *model.Asset {
	return model.NewAsset(name, model.AssetProjectile, model.NewRecord().
		Declare("m_fImpactDamage", model.Float(impact)).
		Declare("m_fRicochetDamage", model.Float(0)).
		Declare("m_fSplashDamageMax", model.Float(impact/2)).
		Declare("m_fPenetratingDamage", model.Float(0)).
		Declare("m_fBaseSpeed", model.Float(speed)).
		Declare("m_fLifeTime", model.Float(lifetime)).
		Declare("m_InstantHit", model.Bool(instant)).
		Declare("VisibleEventRadius", model.Float(ver)))
}

func construction(name string, cost int64, build float64, techTier int64) *model.Asset {
	return model.NewAsset(name, model.AssetConstruction, model.NewRecord().
		Declare("ResourceCost", model.Int(cost)).
		Declare("BuildUpTime", model.Float(build)).
		Declare("MinimumTeamTier", model.Int(0)).
		Declare("TechnologyTier", model.Int(techTier)).
		Declare("MaximumBaseStructureDistance", model.Float(0)))
}

func damageManager(name string, health float64) *model.Asset {
	return model.NewAsset(name, model.AssetDamageManager, model.NewRecord().
		Declare("Health", model.Float(health)))
}

func sensor(target, fow float64) *model.Component {
	return model.NewComponent(model.KindSensor, model.NewRecord().
		Declare("TargetingDistance", model.Float(target)).
		Declare("FogOfWarViewDistance", model.Float(fow)))
}

func turret(aim float64, pri, sec *model.Asset) *model.Component {
	rec := model.NewRecord().Declare("AimDistance", model.Float(aim))
	for _, p := range []string{"Primary", "Secondary"} {
		rec.Declare(p+"ReloadTime", model.Float(2)).
			Declare(p+"FireInterval", model.Float(0.5)).
			Declare(p+"MagazineSize", model.Int(20)).
			Declare(p+"MuzzleSpread", model.Float(1))
	}
	c := model.NewComponent(model.KindVehicleTurret, rec)
	if pri != nil {
		c.WithRef("PrimaryProjectileData", pri)
	}
	if sec != nil {
		c.WithRef("SecondaryProjectileData", sec)
	}
	return c
}

// NewCatalog builds the shared test catalog.
//
//	Gunship         air vehicle, ballistic cannon + rockets, 400 hp
//	Tank            wheeled vehicle, instant-hit railgun + ballistic shell
//	Shrimp          creature with a spit projectile attack and a melee attack
//	Rifleman        soldier without projectile refs (name-match fallback)
//	Commander       player unit with teleport
//	Hover Bike      hover vehicle with turbo
//	Vehicle Factory structure dispensing Hover Bike
//	Tech Up I       tech-up structure at tier 1
//	Platoon Hauler, Squad Transport, Hunter  spawnable transports
func NewCatalog() *Catalog {
	c := &Catalog{}

	gunCannon := c.asset(projectile("ProjectileData_Gunship_Cannon", 100, 300, 3, 200, false))
	gunRocket := c.asset(projectile("ProjectileData_Gunship_Rocket", 80, 150, 6, 250, false))
	c.template(model.NewTemplate("Gunship", "Gunship").WithFaction("Sol").
		WithConstruction(c.asset(construction("ConstructionData_Gunship", 500, 30, 0))).
		WithDamageManager(c.asset(damageManager("Gunship", 400))).
		AddComponent(turret(500, gunCannon, gunRocket)).
		AddComponent(model.NewComponent(model.KindVehicleAir, model.NewRecord().
			Declare("MoveSpeed", model.Float(30)).
			Declare("TurboSpeed", model.Float(45)).
			Declare("StrafeSpeed", model.Float(10)))).
		AddComponent(sensor(400, 350)))

	rail := c.asset(projectile("ProjectileData_Tank_Railgun", 250, 500, 0.1, 100, true))
	shell := c.asset(projectile("ProjectileData_Tank_Shell", 120, 200, 4, 150, false))
	c.template(model.NewTemplate("Tank_Heavy", "Tank").WithFaction("Centauri").
		WithConstruction(c.asset(construction("ConstructionData_Tank", 800, 45, 0))).
		WithDamageManager(c.asset(model.NewAsset("Tank", model.AssetDamageManager, model.NewRecord().
			Declare("Health", model.Float(0)).
			Declare("MaxHealth", model.Float(1200))))).
		AddComponent(turret(600, rail, shell)).
		AddComponent(model.NewComponent(model.KindUnitAimAt, model.NewRecord().Declare("AimDistanceMax", model.Float(650)))).
		AddComponent(model.NewComponent(model.KindVehicleWheeled, model.NewRecord().
			Declare("TurningCircleRadius", model.Float(12)).
			Declare("MoveSpeed", model.Float(8)))).
		AddComponent(sensor(500, 420)))

	spit := c.asset(projectile("ProjectileData_Shrimp_Spit", 20, 60, 2, 50, false))
	c.template(model.NewTemplate("Creature_Shrimp", "Shrimp").WithFaction("Alien").
		WithDamageManager(c.asset(damageManager("Shrimp", 150))).
		AddComponent(model.NewComponent(model.KindCreatureDecapod, model.NewRecord().
			Declare("AIMeleeDistance", model.Float(5)).
			Declare("MoveSpeed", model.Float(6)).
			Declare("FlyMoveScaleSide", model.Float(0.5))).
			WithSub("AttackPrimary", model.NewComponent(model.KindCreatureAttack, model.NewRecord().
				Declare("AttackProjectileAimDistMax", model.Float(40)).
				Declare("AttackProjectileSpread", model.Float(2)).
				Declare("Damage", model.Float(0))).
				WithRef("AttackProjectileData", spit)).
			WithSub("AttackSecondary", model.NewComponent(model.KindCreatureAttack, model.NewRecord().
				Declare("AttackProjectileAimDistMax", model.Float(5)).
				Declare("AttackProjectileSpread", model.Float(0)).
				Declare("Damage", model.Float(25))))).
		AddComponent(sensor(100, 120)).
		AddComponent(model.NewComponent(model.KindAIAiming, model.NewRecord().Declare("AimPaused", model.Bool(false)))))

	c.asset(projectile("ProjectileData_Rifleman_Rifle", 15, 900, 1.5, 80, false))
	c.template(model.NewTemplate("Soldier_Rifleman", "Rifleman").WithFaction("Sol").
		WithConstruction(c.asset(construction("ConstructionData_Rifleman", 50, 10, 0))).
		AddComponent(model.NewComponent(model.KindSoldier, model.NewRecord().
			Declare("JumpSpeed", model.Float(5)).
			Declare("RunSpeed", model.Float(6)).
			Inherit("MoveSpeed", model.Float(4)))).
		AddComponent(sensor(80, 90)))

	c.template(model.NewTemplate("Player_Commander", "Commander").WithFaction("Sol").
		AddComponent(model.NewComponent(model.KindPlayerMovement, model.NewRecord().
			Declare("JumpSpeed", model.Float(7)).
			Declare("WalkSpeed", model.Float(3)))).
		AddComponent(model.NewComponent(model.KindTeleportUI, model.NewRecord().
			Declare("TeleportCooldownTime", model.Float(30)).
			Declare("TeleportTime", model.Float(5)))))

	bike := c.template(model.NewTemplate("Hover_Bike", "Hover Bike").WithFaction("Sol").
		WithConstruction(c.asset(construction("ConstructionData_HoverBike", 150, 12, 0))).
		AddComponent(model.NewComponent(model.KindVehicleHovered, model.NewRecord().
			Declare("MoveSpeed", model.Float(20)).
			Declare("TurboSpeed", model.Float(35)))))

	c.template(model.NewTemplate("Structure_VehicleFactory", "Vehicle Factory").WithFaction("Sol").
		WithConstruction(c.asset(construction("ConstructionData_VehicleFactory", 1200, 90, 0))).
		AddComponent(model.NewComponent(model.KindVehicleDispenser, model.NewRecord().
			Declare("DispenseTimeout", model.Float(20)).
			Declare("LocalTimeout", model.Float(0))).
			WithLink("VehicleToDispense", bike)))

	c.template(model.NewTemplate("Structure_TechUp1", "Tech Up I").WithFaction("Sol").
		WithConstruction(c.asset(construction("ConstructionData_TechUp1", 1000, 60, 1))))

	for _, name := range []string{"Platoon Hauler", "Squad Transport", "Hunter"} {
		c.template(model.NewTemplate(strings.ReplaceAll(name, " ", "_"), name).
			AddComponent(model.NewComponent(model.KindVehicle, model.NewRecord().Declare("MoveSpeed", model.Float(10)))))
	}

	return c
}
