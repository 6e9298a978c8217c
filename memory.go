package harvest

import (
	"context"
	"time"
)

// ContainerDescriptor remembers which container signature won on a site,
// so later runs against the same site can prefer it. The memory lives
// entirely outside the engine: callers consult and update it, and pass a
// remembered signature back in via WithPreferredSignature.
type ContainerDescriptor struct {
	ID        string    `json:"id"`
	SiteKey   string    `json:"siteKey"`
	Signature string    `json:"signature"`
	Depth     int       `json:"depth"`
	Score     float64   `json:"score"`
	Support   int       `json:"support"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the descriptor contains invalid fields.
func (d *ContainerDescriptor) Validate() error {
	if d.SiteKey == "" {
		return Errorf(EINVALID, "descriptor site key required")
	}
	if d.Signature == "" {
		return Errorf(EINVALID, "descriptor signature required")
	}
	return nil
}

// SelectorMemory is the external keyed store of remembered container
// descriptors (site key → descriptor).
type SelectorMemory interface {
	// Remember stores or replaces the descriptor for its site key.
	Remember(ctx context.Context, d *ContainerDescriptor) error

	// Recall retrieves the descriptor for a site key.
	// Returns ENOTFOUND if no descriptor is stored.
	Recall(ctx context.Context, siteKey string) (*ContainerDescriptor, error)

	// Forget removes the descriptor for a site key.
	// Returns ENOTFOUND if no descriptor is stored.
	Forget(ctx context.Context, siteKey string) error

	// List retrieves all stored descriptors ordered by site key.
	List(ctx context.Context) ([]*ContainerDescriptor, error)
}
