// Package presentation renders metrics snapshots to their outputs.
package presentation

import (
	"context"
	"errors"

	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// Presenter renders one metrics snapshot. It is called after every
// recomputation, so implementations should be quick.
type Presenter interface {
	Present(ctx context.Context, snapshot types.MetricsSnapshot) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, snapshot types.MetricsSnapshot) error

func (f PresenterFunc) Present(ctx context.Context, snapshot types.MetricsSnapshot) error {
	return f(ctx, snapshot)
}

// Multi presents to every presenter in order. A failing presenter does not
// stop the others; all failures are joined.
type Multi []Presenter

func (m Multi) Present(ctx context.Context, snapshot types.MetricsSnapshot) error {
	var errs []error

	for _, presenter := range m {
		if presenter == nil {
			continue
		}

		if err := presenter.Present(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
