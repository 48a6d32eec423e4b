package engine_test

import (
	"github.com/udisondev/unitbalance/internal/overridesync"
	"github.com/udisondev/unitbalance/internal/wire"
)

func decodeGroups(msg []byte) ([]overridesync.Group, error) {
	return wire.DecodeOverrides(msg)
}
