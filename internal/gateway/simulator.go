package gateway

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

// Result is the gateway's verdict on a confirmation attempt. TransactionRef
// is non-empty iff Status is SUCCESS.
type Result struct {
	Status         domain.Status
	TransactionRef string
}

// Simulator stands in for a real payment processor. The demo rule: truncate
// the amount to its integer part, even amounts succeed, odd amounts fail.
type Simulator struct {
	log   *slog.Logger
	delay time.Duration
}

func NewSimulator(log *slog.Logger) *Simulator {
	return &Simulator{log: log, delay: time.Second}
}

// WithDelay overrides the simulated network latency.
func (s *Simulator) WithDelay(d time.Duration) *Simulator {
	s.delay = d
	return s
}

// Confirm blocks for the simulated latency and decides the outcome. It must
// only be called from a background worker, never a request path.
func (s *Simulator) Confirm(paymentID int64, amount float64) Result {
	time.Sleep(s.delay)

	if int64(amount)%2 != 0 {
		s.log.Info("gateway declined payment", "payment_id", paymentID, "amount", amount)
		return Result{Status: domain.StatusFailed}
	}

	ref := fmt.Sprintf("tx-%d-%d", paymentID, time.Now().Unix())
	s.log.Info("gateway confirmed payment", "payment_id", paymentID, "tx_ref", ref)
	return Result{Status: domain.StatusSuccess, TransactionRef: ref}
}
