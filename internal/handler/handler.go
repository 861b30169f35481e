package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bank-ledger/internal/middleware"
	"bank-ledger/internal/models"
	"bank-ledger/internal/service"
	"bank-ledger/internal/statement"
	"bank-ledger/internal/utils"
)

// Handler exposes the ledger service over HTTP. It holds no business
// rules: input parsing, error-to-status mapping and response shaping only.
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps business outcomes to statuses. Anything unrecognized is
// an infrastructure fault and surfaces as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidInitialBalance),
		errors.Is(err, models.ErrPasswordTooShort),
		errors.Is(err, models.ErrSelfTransfer),
		errors.Is(err, models.ErrUnknownAccountKind),
		errors.Is(err, models.ErrUnknownComplaintKind):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case models.IsInsufficientFunds(err):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrUnknownRecipient):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeMessage(w, http.StatusNotFound, models.ErrNotFound.Error())
	case errors.Is(err, models.ErrWrongOldPassword):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrDuplicateAccountNumber):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		h.log.Errorf("Internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	if !utils.IsPositiveDecimal(s) {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return decimal.NewFromString(s)
}

type createAccountRequest struct {
	Kind           string `json:"kind"`
	CustomerName   string `json:"customer_name"`
	Address        string `json:"address"`
	ContactNumber  string `json:"contact_number"`
	GovtID         string `json:"govt_id"`
	Age            int    `json:"age"`
	InitialBalance string `json:"initial_balance"`
	ProfilePhoto   []byte `json:"profile_photo,omitempty"`
	Password       string `json:"password"`
}

// CreateAccount handles account opening.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := models.ParseAccountKind(req.Kind)
	if err != nil {
		h.writeError(w, err)
		return
	}
	balance, err := parseAmount(req.InitialBalance)
	if err != nil {
		h.writeError(w, err)
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), service.CreateAccountParams{
		Kind:           kind,
		CustomerName:   req.CustomerName,
		Address:        req.Address,
		ContactNumber:  req.ContactNumber,
		GovtID:         req.GovtID,
		Age:            req.Age,
		InitialBalance: balance,
		ProfilePhoto:   req.ProfilePhoto,
		Password:       req.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type loginRequest struct {
	AccountNumber string `json:"account_number"`
	Password      string `json:"password"`
}

// Login handles account authentication and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !utils.IsValidAccountNumber(req.AccountNumber) {
		writeMessage(w, http.StatusBadRequest, "account number is required")
		return
	}

	account, token, err := h.svc.Authenticate(r.Context(), req.AccountNumber, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"token":   token,
	})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// Deposit credits the authenticated account.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	balance, err := h.svc.Deposit(r.Context(), number, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

// Withdraw debits the authenticated account.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	balance, err := h.svc.Withdraw(r.Context(), number, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

type transferRequest struct {
	ToAccountNumber string `json:"to_account_number"`
	Amount          string `json:"amount"`
}

// Transfer moves funds from the authenticated account to another one.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !utils.IsValidAccountNumber(req.ToAccountNumber) {
		writeMessage(w, http.StatusBadRequest, "recipient account number is required")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.svc.Transfer(r.Context(), number, req.ToAccountNumber, amount); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the authenticated account's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), number, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// History lists the authenticated account's transaction log.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	history, err := h.svc.History(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Statement renders the authenticated account's statement as XML.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.svc.FindAccount(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	history, err := h.svc.History(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	doc, err := statement.Generate(account, history)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

type recoverRequest struct {
	GovtID        string `json:"govt_id"`
	ContactNumber string `json:"contact_number"`
}

// RecoverAccountNumber resolves a forgotten account number from identity.
func (h *Handler) RecoverAccountNumber(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	number, err := h.svc.RecoverAccountNumber(r.Context(), req.GovtID, req.ContactNumber)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"account_number": number})
}

// ListAccounts returns the administrative account listing.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

type complaintRequest struct {
	Kind    string `json:"kind"`
	Details string `json:"details"`
}

// RegisterComplaint files a complaint.
func (h *Handler) RegisterComplaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := models.ParseComplaintKind(req.Kind)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if req.Details == "" {
		writeMessage(w, http.StatusBadRequest, "complaint details are required")
		return
	}

	if err := h.svc.RegisterComplaint(r.Context(), kind, req.Details); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// AllComplaints returns complaints grouped by kind.
func (h *Handler) AllComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.svc.AllComplaints(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, complaints)
}
