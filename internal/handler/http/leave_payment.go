package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeavePaymentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type leavePaymentHandlerImpl struct {
	leavePaymentService leavepayment.LeavePaymentService
}

func NewLeavePaymentHandler(leavePaymentService leavepayment.LeavePaymentService) LeavePaymentHandler {
	return &leavePaymentHandlerImpl{leavePaymentService: leavePaymentService}
}

func (h *leavePaymentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req leavepayment.CreateLeavePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollID = chi.URLParam(r, "id")

	result, err := h.leavePaymentService.Add(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave payment added", result)
}

// List accepts an optional employee_id query parameter; it defaults to the payroll's employee.
func (h *leavePaymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	payrollID := chi.URLParam(r, "id")
	if payrollID == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	result, err := h.leavePaymentService.List(r.Context(), r.URL.Query().Get("employee_id"), payrollID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leavePaymentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave payment ID is required", nil)
		return
	}

	if err := h.leavePaymentService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave payment deleted", nil)
}
