package batch

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the kind of progress notification emitted by an Executor.
type EventType string

const (
	EventBatchStarted    EventType = "batch_started"
	EventWalletStarted   EventType = "wallet_started"
	EventWalletSucceeded EventType = "wallet_succeeded"
	EventWalletFailed    EventType = "wallet_failed"
	EventBatchFinished   EventType = "batch_finished"
)

// Event is one progress notification.
type Event struct {
	Type       EventType       `json:"type"`
	BatchID    string          `json:"batchId"`
	Kind       Kind            `json:"kind"`
	Target     string          `json:"target"`
	WalletID   string          `json:"walletId,omitempty"`
	WalletName string          `json:"walletName,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	TxID       string          `json:"txId,omitempty"`
	Error      string          `json:"error,omitempty"`
	Total      int             `json:"total"`
	Successes  int             `json:"successes"`
	Failures   int             `json:"failures"`
	Cancelled  bool            `json:"cancelled,omitempty"`
	Time       time.Time       `json:"time"`
}

// Notifier receives batch progress. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
