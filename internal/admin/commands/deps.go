package commands

import (
	"context"

	"github.com/udisondev/unitbalance/internal/engine"
	"github.com/udisondev/unitbalance/internal/model"
)

// Balancer is the part of the engine the commands drive.
// Calls must run on the host loop.
type Balancer interface {
	Reload(ctx context.Context) engine.ReloadReport
	ReloadDefault(ctx context.Context) engine.ReloadReport
	BaselineValue(unit, kind, attr string) (model.Value, error)
}

// Documents edits and catalogs balance documents.
type Documents interface {
	WriteParam(unit, key string, value float64) (string, error)
	WriteTechTier(tier int, seconds float64) (string, error)
	WriteBool(key string, v bool) (string, error)
	Save(name string) (string, error)
	Load(file string) error
	List() ([]string, error)
	ResetBlank() error
}
