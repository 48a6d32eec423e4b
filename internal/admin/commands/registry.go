package commands

import (
	"time"

	"github.com/udisondev/unitbalance/internal/admin"
	"github.com/udisondev/unitbalance/internal/audit"
)

// RegisterAll registers every balance command into the handler.
func RegisterAll(h *admin.Handler, bal Balancer, docs Documents, rec audit.Recorder, now func() time.Time) {
	h.Register(NewRebalance(bal))
	h.Register(NewBalance(docs, bal, rec, now))
}
