package gateway

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

func newTestSimulator() *Simulator {
	return NewSimulator(slog.Default()).WithDelay(0)
}

func TestConfirmParity(t *testing.T) {
	s := newTestSimulator()

	cases := []struct {
		amount float64
		want   domain.Status
	}{
		{100.0, domain.StatusSuccess},
		{101.0, domain.StatusFailed},
		{0, domain.StatusSuccess},
		{2.9, domain.StatusSuccess},  // truncates to 2
		{101.9, domain.StatusFailed}, // truncates to 101
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("amount_%v", tc.amount), func(t *testing.T) {
			res := s.Confirm(1, tc.amount)
			assert.Equal(t, tc.want, res.Status)
			if tc.want == domain.StatusSuccess {
				assert.NotEmpty(t, res.TransactionRef)
			} else {
				assert.Empty(t, res.TransactionRef)
			}
		})
	}
}

func TestConfirmTransactionRefFormat(t *testing.T) {
	s := newTestSimulator()

	res := s.Confirm(42, 10)
	assert.True(t, strings.HasPrefix(res.TransactionRef, "tx-42-"), "got %q", res.TransactionRef)

	other := s.Confirm(43, 10)
	assert.NotEqual(t, res.TransactionRef, other.TransactionRef)
}
