//go:generate mockgen -source=capability.go -destination=mocks/mock_capability.go -package=mocks

package override

import (
	"errors"

	"github.com/udisondev/unitbalance/internal/model"
)

// ErrCapabilityUnavailable means the host has no synchronized override subsystem.
var ErrCapabilityUnavailable = errors.New("override capability unavailable")

// Capability is the host's synchronized override subsystem.
// Set returns false when the target cannot be resolved or the member is unknown.
type Capability interface {
	Set(target, member string, v model.Value, enqueue, notify bool) bool
	RevertAll(notify, enqueue bool)
}
