package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event type names as they appear on the wire.
const (
	TypePaymentConfirmed = "PaymentConfirmed"
	TypePaymentFailed    = "PaymentFailed"
	TypePaymentRefunded  = "PaymentRefunded"
)

// Routing keys on the ums_events topic exchange.
const (
	KeyPaymentConfirmed = "payment.events.confirmed"
	KeyPaymentFailed    = "payment.events.failed"
	KeyPaymentRefunded  = "payment.events.refund"

	// EnrollmentEventsPattern matches everything the enrollment service emits.
	EnrollmentEventsPattern = "enrollment.events.#"
)

// Envelope is the wire format shared by inbound and outbound events.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PaymentEvent is the payload of every outbound payment event.
type PaymentEvent struct {
	PaymentID    int64  `json:"payment_id"`
	EnrollmentID int64  `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
}

// NewPaymentEnvelope wraps a payment's identity into an outbound envelope.
func NewPaymentEnvelope(eventType string, p Payment) Envelope {
	payload, _ := json.Marshal(PaymentEvent{
		PaymentID:    p.ID,
		EnrollmentID: p.EnrollmentID,
		StudentID:    p.StudentID,
	})
	return Envelope{Type: eventType, Payload: payload}
}

// RegistrationPendingPayment is the inbound payload consumed from the
// enrollment service. Amount is optional on the wire and defaults to 0.
type RegistrationPendingPayment struct {
	EnrollmentID int64   `json:"enrollment_id"`
	StudentID    string  `json:"student_id"`
	Amount       float64 `json:"amount"`
}

// DecodeRegistration validates and decodes an inbound envelope's payload.
// Missing enrollment_id or student_id is rejected; a missing amount is not.
func DecodeRegistration(env Envelope) (RegistrationPendingPayment, error) {
	var raw struct {
		EnrollmentID *int64   `json:"enrollment_id"`
		StudentID    *string  `json:"student_id"`
		Amount       *float64 `json:"amount"`
	}
	if err := json.Unmarshal(env.Payload, &raw); err != nil {
		return RegistrationPendingPayment{}, fmt.Errorf("decode registration payload: %w", err)
	}
	if raw.EnrollmentID == nil {
		return RegistrationPendingPayment{}, errors.New("registration payload missing enrollment_id")
	}
	if raw.StudentID == nil || *raw.StudentID == "" {
		return RegistrationPendingPayment{}, errors.New("registration payload missing student_id")
	}
	reg := RegistrationPendingPayment{
		EnrollmentID: *raw.EnrollmentID,
		StudentID:    *raw.StudentID,
	}
	if raw.Amount != nil {
		reg.Amount = *raw.Amount
	}
	return reg, nil
}
