package mock

import "github.com/fwojciec/harvest"

var _ harvest.SnapshotBuilder = (*SnapshotBuilder)(nil)

// SnapshotBuilder is a mock implementation of harvest.SnapshotBuilder.
type SnapshotBuilder struct {
	BuildFn func(html string) (*harvest.Snapshot, error)
}

func (b *SnapshotBuilder) Build(html string) (*harvest.Snapshot, error) {
	return b.BuildFn(html)
}
