package dashboard

import "github.com/rxtech-lab/argo-pnl/internal/types"

// MetricsMsg carries a freshly computed snapshot.
type MetricsMsg struct {
	Snapshot types.MetricsSnapshot
}

// SourceErrorMsg reports a failure of the trade source. The dashboard keeps
// showing the last snapshot next to it.
type SourceErrorMsg struct {
	Err error
}
