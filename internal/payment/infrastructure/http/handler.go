package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/2024mt03579/ums-payment-service/internal/payment/application"
	"github.com/2024mt03579/ums-payment-service/internal/payment/domain"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log     *slog.Logger
	service *application.Service
	db      Pinger
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, db Pinger) *Handler {
	return &Handler{
		log:     log,
		service: service,
		db:      db,
		tracer:  otel.Tracer("payment-http"),
	}
}

type createPaymentReq struct {
	StudentID    string  `json:"student_id"`
	EnrollmentID int64   `json:"enrollment_id"`
	Amount       float64 `json:"amount"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Post("/payments", h.createPayment)
	r.Get("/payments", h.listPayments)
	r.Get("/payments/{id}", h.getPayment)
	r.Post("/payments/{id}/approve", h.approvePayment)
	r.Post("/payments/refund/{id}", h.refundPayment)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreatePayment")
	defer span.End()

	var req createPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.StudentID == "" || req.EnrollmentID <= 0 || req.Amount < 0 {
		http.Error(w, "student_id, positive enrollment_id and non-negative amount required", http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(ctx, req.StudentID, req.EnrollmentID, req.Amount)
	if err != nil {
		h.log.Error("create payment failed", "err", err)
		http.Error(w, "could not create payment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetPayment")
	defer span.End()

	id, ok := paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListPayments")
	defer span.End()

	payments, err := h.service.List(ctx, r.URL.Query().Get("status"), r.URL.Query().Get("student_id"))
	if err != nil {
		h.log.Error("list payments failed", "err", err)
		http.Error(w, "could not list payments", http.StatusInternalServerError)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) approvePayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ApprovePayment")
	defer span.End()

	id, ok := paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Approve(ctx, id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) refundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RefundPayment")
	defer span.End()

	id, ok := paymentID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Refund(ctx, id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) writeError(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "payment not found", http.StatusNotFound)
		return
	}
	h.log.Error("payment operation failed", "payment_id", id, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
