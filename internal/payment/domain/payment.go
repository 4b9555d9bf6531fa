package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

var ErrNotFound = errors.New("payment not found")

// ParseStatus normalizes a status string case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(s)); st {
	case StatusPending, StatusSuccess, StatusFailed, StatusRefunded:
		return st, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", s)
	}
}

// Payment is the sole persistent entity. Status is the only mutable field
// besides TransactionRef, which is set once on the first SUCCESS transition
// and never cleared afterwards.
type Payment struct {
	ID             int64     `json:"id"`
	StudentID      string    `json:"student_id"`
	EnrollmentID   int64     `json:"enrollment_id"`
	Amount         float64   `json:"amount"`
	Status         Status    `json:"status"`
	TransactionRef *string   `json:"transaction_ref"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}
