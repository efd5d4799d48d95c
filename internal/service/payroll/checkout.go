package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// ========== FUNDING CHECKOUT ==========

// CheckoutStatus asks the gateway for the current state of the payroll's funding checkout and
// records it on the payroll. It never changes the payroll status.
func (s *PayrollServiceImpl) CheckoutStatus(ctx context.Context, id string) (payroll.CheckoutStatusResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.CheckoutStatusResponse{}, err
	}
	if record.CheckoutID == nil || *record.CheckoutID == "" || s.gateway == nil {
		return payroll.CheckoutStatusResponse{}, payroll.ErrCheckoutNotCreated
	}

	state, err := s.gateway.FetchCheckoutStatus(ctx, *record.CheckoutID)
	if err != nil {
		return payroll.CheckoutStatusResponse{}, fmt.Errorf("failed to fetch checkout status: %w", err)
	}

	if err := s.payrollRepo.UpdateCheckoutStatus(ctx, id, string(state.Status)); err != nil {
		slog.Warn("Failed to record checkout status", "payroll_id", id, "error", err)
	}

	return payroll.CheckoutStatusResponse{
		PayrollID:  id,
		CheckoutID: state.ID,
		Status:     string(state.Status),
		PaidAt:     state.PaidAt,
		Amount:     state.Amount,
		Currency:   state.Currency,
	}, nil
}

// RecordCheckoutEvent stores a status pushed by the gateway for a funding checkout.
func (s *PayrollServiceImpl) RecordCheckoutEvent(ctx context.Context, req payroll.CheckoutEventRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	record, err := s.payrollRepo.GetByCheckoutID(ctx, req.CheckoutID)
	if err != nil {
		return err
	}

	status := payment.CheckoutStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := s.payrollRepo.UpdateCheckoutStatus(ctx, record.ID, string(status)); err != nil {
		return fmt.Errorf("failed to record checkout status: %w", err)
	}

	slog.Info("Payroll checkout status received", "payroll_id", record.ID, "checkout_id", req.CheckoutID, "status", status)
	return nil
}
