package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/application/usecase"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// Handler exposes the arrears operations over HTTP.
type Handler struct {
	originate           *usecase.OriginateLoanUseCase
	getLoan             *usecase.GetLoanUseCase
	evaluate            *usecase.EvaluateLoanUseCase
	recordPayment       *usecase.RecordPaymentUseCase
	reconcilePayment    *usecase.ReconcilePaymentUseCase
	listPayments        *usecase.ListPaymentsUseCase
	listClassifications *usecase.ListClassificationsUseCase
	listUnreconciled    *usecase.ListUnreconciledUseCase
	getCase             *usecase.GetCaseUseCase
	closeCase           *usecase.CloseCaseUseCase
	sweep               *usecase.SweepPortfolioUseCase
	dashboard           *usecase.GetDashboardUseCase
	recovery            *usecase.GetRecoveryReportUseCase
	logger              *slog.Logger
}

// NewHandler creates the HTTP handler for the arrears API.
func NewHandler(
	originate *usecase.OriginateLoanUseCase,
	getLoan *usecase.GetLoanUseCase,
	evaluate *usecase.EvaluateLoanUseCase,
	recordPayment *usecase.RecordPaymentUseCase,
	reconcilePayment *usecase.ReconcilePaymentUseCase,
	listPayments *usecase.ListPaymentsUseCase,
	listClassifications *usecase.ListClassificationsUseCase,
	listUnreconciled *usecase.ListUnreconciledUseCase,
	getCase *usecase.GetCaseUseCase,
	closeCase *usecase.CloseCaseUseCase,
	sweep *usecase.SweepPortfolioUseCase,
	dashboard *usecase.GetDashboardUseCase,
	recovery *usecase.GetRecoveryReportUseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		originate:           originate,
		getLoan:             getLoan,
		evaluate:            evaluate,
		recordPayment:       recordPayment,
		reconcilePayment:    reconcilePayment,
		listPayments:        listPayments,
		listClassifications: listClassifications,
		listUnreconciled:    listUnreconciled,
		getCase:             getCase,
		closeCase:           closeCase,
		sweep:               sweep,
		dashboard:           dashboard,
		recovery:            recovery,
		logger:              logger,
	}
}

// RegisterRoutes attaches the API routes to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", h.originateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}", h.loanByID).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/evaluate", h.evaluateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", h.postPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", h.paymentsByLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/classifications", h.classificationsByLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/case", h.caseByLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/case/close", h.closeCaseByLoan).Methods(http.MethodPost)

	api.HandleFunc("/payments/unreconciled", h.unreconciledPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/reconcile", h.reconcile).Methods(http.MethodPost)

	api.HandleFunc("/sweeps", h.runSweep).Methods(http.MethodPost)
	api.HandleFunc("/reports/dashboard", h.portfolioDashboard).Methods(http.MethodGet)
	api.HandleFunc("/reports/recovery", h.recoveryReport).Methods(http.MethodGet)
}

func (h *Handler) originateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.OriginateLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.originate.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) loanByID(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getLoan.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) evaluateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.EvaluateLoanRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.evaluate.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) postPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.recordPayment.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) paymentsByLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listPayments.Execute(r.Context(), mux.Vars(r)["id"], pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) classificationsByLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listClassifications.Execute(r.Context(), mux.Vars(r)["id"], pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) caseByLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getCase.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) closeCaseByLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CloseCaseRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.closeCase.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) unreconciledPayments(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listUnreconciled.Execute(r.Context(), pageFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcilePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.PaymentID = mux.Vars(r)["id"]
	resp, err := h.reconcilePayment.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) runSweep(w http.ResponseWriter, r *http.Request) {
	var req dto.SweepRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	resp, err := h.sweep.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) portfolioDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboard.Execute(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recoveryReport(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, -1, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, r, valueobject.ErrValidation)
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, r, valueobject.ErrValidation)
			return
		}
		to = t
	}

	resp, err := h.recovery.Execute(r.Context(), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, valueobject.ErrLoanNotFound),
		errors.Is(err, valueobject.ErrPaymentNotFound),
		errors.Is(err, valueobject.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, valueobject.ErrValidation),
		errors.Is(err, valueobject.ErrInvalidScheduleParameters):
		return http.StatusBadRequest
	case errors.Is(err, valueobject.ErrDuplicatePaymentReference),
		errors.Is(err, valueobject.ErrAlreadyReconciled),
		errors.Is(err, valueobject.ErrInvalidStatusTransition),
		errors.Is(err, valueobject.ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pageFrom(r *http.Request) dto.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return dto.PageRequest{Page: page, PageSize: size}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
