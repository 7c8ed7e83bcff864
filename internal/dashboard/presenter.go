package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramPresenter forwards snapshots and source errors to a dashboard
// program.
type ProgramPresenter struct {
	sender Sender
}

func NewProgramPresenter(sender Sender) *ProgramPresenter {
	return &ProgramPresenter{sender: sender}
}

func (p *ProgramPresenter) Present(_ context.Context, snapshot types.MetricsSnapshot) error {
	p.sender.Send(MetricsMsg{Snapshot: snapshot})

	return nil
}

// ReportError shows err on the dashboard. It matches the tracker's error
// handler signature.
func (p *ProgramPresenter) ReportError(err error) {
	p.sender.Send(SourceErrorMsg{Err: err})
}
