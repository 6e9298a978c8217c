package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.SelectorMemory = (*SelectorMemory)(nil)

// SelectorMemory is a mock implementation of harvest.SelectorMemory.
type SelectorMemory struct {
	RememberFn func(ctx context.Context, d *harvest.ContainerDescriptor) error
	RecallFn   func(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error)
	ForgetFn   func(ctx context.Context, siteKey string) error
	ListFn     func(ctx context.Context) ([]*harvest.ContainerDescriptor, error)
}

func (m *SelectorMemory) Remember(ctx context.Context, d *harvest.ContainerDescriptor) error {
	return m.RememberFn(ctx, d)
}

func (m *SelectorMemory) Recall(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error) {
	return m.RecallFn(ctx, siteKey)
}

func (m *SelectorMemory) Forget(ctx context.Context, siteKey string) error {
	return m.ForgetFn(ctx, siteKey)
}

func (m *SelectorMemory) List(ctx context.Context) ([]*harvest.ContainerDescriptor, error) {
	return m.ListFn(ctx)
}
