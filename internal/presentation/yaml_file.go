package presentation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
)

// YAMLFilePresenter keeps a YAML file with the display form of the latest
// snapshot.
type YAMLFilePresenter struct {
	path     string
	currency string
}

// NewYAMLFilePresenter creates a presenter writing to path.
func NewYAMLFilePresenter(path, currency string) *YAMLFilePresenter {
	return &YAMLFilePresenter{path: path, currency: currency}
}

func (p *YAMLFilePresenter) Present(_ context.Context, snapshot types.MetricsSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create stats directory", err)
	}

	// Write to a sibling file first so readers never see a partial document.
	tmp := p.path + ".tmp"
	if err := types.WriteMetricsSnapshot(tmp, snapshot, p.currency); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write stats file", err)
	}

	if err := os.Rename(tmp, p.path); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to replace stats file", err)
	}

	return nil
}

// GetOutputPath returns the stats file path.
func (p *YAMLFilePresenter) GetOutputPath() string {
	return p.path
}
