package mocks

//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/rxtech-lab/argo-pnl/internal/source TradeSource,Subscription
//go:generate mockgen -destination=./mock_presenter.go -package=mocks github.com/rxtech-lab/argo-pnl/internal/presentation Presenter
