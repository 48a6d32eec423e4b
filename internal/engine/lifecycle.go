package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/udisondev/unitbalance/internal/model"
)

type spawnEntry struct {
	faction string
	unit    string
	count   int
}

// additionalSpawn is matched against team names case-insensitively.
var additionalSpawn = []spawnEntry{
	{"Sol", "Platoon Hauler", 3},
	{"Centauri", "Squad Transport", 3},
	{"Alien", "Hunter", 1},
}

// OnGameStarted applies the loaded document to a fresh match and syncs every observer after a grace delay.
func (e *Engine) OnGameStarted(ctx context.Context) {
	if !e.current.Loaded {
		if _, err := e.LoadConfig(); err != nil {
			e.log.Warn("game started without a valid balance document", "err", err)
		}
	}
	if e.current.DumpFields && !e.fieldsDumped {
		e.fieldsDumped = true
		e.DumpFields()
		if e.opts.DumpPath != "" {
			if _, err := e.DumpUnitsJSON(e.opts.DumpPath); err != nil {
				e.log.Warn("unit dump failed", "path", e.opts.DumpPath, "err", err)
			}
		}
	}
	if !e.current.Active() {
		e.log.Info("game started, balance overrides disabled")
		return
	}

	summary := e.ApplyAll(e.capability != nil)
	e.PropagateToLiveInstances()
	if e.current.AdditionalSpawn && e.sched != nil {
		e.sched.After(e.opts.SpawnDelay, "additional spawn", func() { e.SpawnAdditional() })
	}
	n := e.syncAll(ctx, e.opts.GameStartGrace)
	e.log.Info("game started, balance applied", "generation", e.current.Generation, "applied", summary.Total(), "observers", n)
}

// OnGameEnded reverts the match to vanilla values. The next session logs the capability warning again.
func (e *Engine) OnGameEnded() {
	e.RevertToBaseline()
	e.capWarn = new(sync.Once)
	e.log.Info("game ended, balance reverted")
}

// SpawnAdditional spawns the extra transports of every matching team and returns how many were spawned.
func (e *Engine) SpawnAdditional() int {
	spawned := 0
	for _, team := range e.reg.TeamNames() {
		for _, entry := range additionalSpawn {
			if !strings.Contains(strings.ToLower(team), strings.ToLower(entry.faction)) {
				continue
			}
			if _, ok := e.reg.Template(entry.unit); !ok {
				e.log.Warn("additional spawn template not found", "unit", entry.unit, "team", team)
				continue
			}
			for range entry.count {
				if _, err := e.reg.Spawn(entry.unit, team); err != nil {
					e.log.Warn("additional spawn failed", "unit", entry.unit, "team", team, "err", err)
					continue
				}
				spawned++
			}
		}
	}
	e.log.Info("additional units spawned", "count", spawned)
	return spawned
}

// AllowDispense reports whether team may dispense unit at its current tier.
func (e *Engine) AllowDispense(team, unit string) bool {
	if !e.current.Active() {
		return true
	}
	minTier, ok := e.current.MinTierFor(unit)
	if !ok {
		return true
	}
	tier, ok := e.reg.TeamTier(team)
	if !ok {
		return true
	}
	if tier < minTier {
		e.log.Info("dispense blocked by min_tier", "team", team, "unit", unit, "tier", tier, "min_tier", minTier)
		return false
	}
	return true
}

// OnTeamTierChanged resets the LocalTimeout of a team's dispensers once per unit
// when the team first reaches that unit's min_tier.
func (e *Engine) OnTeamTierChanged(team string, oldTier, newTier int) int {
	if newTier <= oldTier || !e.current.Active() {
		return 0
	}
	reset := 0
	for unit, minTier := range e.current.MinTier {
		if minTier < 0 || oldTier >= minTier || newTier < minTier {
			continue
		}
		key := team + "_" + unit
		if _, done := e.tierResets[key]; done {
			continue
		}
		e.tierResets[key] = struct{}{}
		reset += e.resetDispensers(team, unit)
	}
	return reset
}

func (e *Engine) resetDispensers(team, unit string) int {
	checked, reset := 0, 0
	for _, d := range e.reg.Dispensers(team) {
		linked, ok := d.Link("VehicleToDispense")
		if !ok || !strings.EqualFold(linked.DisplayName(), unit) {
			continue
		}
		checked++
		old, err := model.GetFloat(d, "LocalTimeout")
		if err != nil || old <= 0 {
			continue
		}
		if err := d.Set("LocalTimeout", model.Float(0)); err != nil {
			e.log.Warn("dispenser timeout reset failed", "unit", unit, "team", team, "err", err)
			continue
		}
		reset++
		e.log.Info("dispenser timeout reset", "unit", unit, "team", team, "old", old)
	}
	e.log.Info("team reached unit tier", "team", team, "unit", unit, "dispensers", checked)
	return reset
}
