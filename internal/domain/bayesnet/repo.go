package bayesnet

import "context"

// Storage keys for the two logical records the service persists.
const (
	KeyObservations   = "observations"
	KeyCPTAdjustments = "cpt_adjustments"
)

// StateStore is the injectable durable key-value store behind the learning
// state. Load returns (nil, nil) when the key has never been written. The
// inference core has no I/O dependency of its own; store failures are logged
// and swallowed by the service so in-memory state stays authoritative.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
