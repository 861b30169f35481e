package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bank-ledger/internal/config"
	"bank-ledger/internal/middleware"
	"bank-ledger/internal/service"
	"bank-ledger/internal/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret"}
	svc := service.NewService(memory.NewStore(), logger, cfg, nil, nil)
	h := NewHandler(svc, logger)

	r := mux.NewRouter()
	r.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/accounts/recover", h.RecoverAccountNumber).Methods("POST")
	r.HandleFunc("/complaints", h.RegisterComplaint).Methods("POST")
	r.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	r.HandleFunc("/complaints", h.AllComplaints).Methods("GET")
	authRouter := r.PathPrefix("/account").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/deposit", h.Deposit).Methods("POST")
	authRouter.HandleFunc("/withdraw", h.Withdraw).Methods("POST")
	authRouter.HandleFunc("/transfer", h.Transfer).Methods("POST")
	authRouter.HandleFunc("/password", h.ChangePassword).Methods("POST")
	authRouter.HandleFunc("/history", h.History).Methods("GET")
	authRouter.HandleFunc("/statement", h.Statement).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func createAccount(t *testing.T, srv *httptest.Server, name, kind, balance string) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/accounts", "", map[string]any{
		"kind":            kind,
		"customer_name":   name,
		"address":         "1 Main St",
		"contact_number":  "555-" + name,
		"govt_id":         "ID-" + name,
		"age":             30,
		"initial_balance": balance,
		"password":        "hunter22",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account status=%d body=%v", resp.StatusCode, body)
	}
	number, _ := body["account_number"].(string)
	if number == "" {
		t.Fatalf("no account number in response: %v", body)
	}
	return number
}

func login(t *testing.T, srv *httptest.Server, number string) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/login", "", map[string]string{
		"account_number": number,
		"password":       "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("no token in response: %v", body)
	}
	return token
}

func TestCreateAccountValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		kind       string
		balance    string
		password   string
		wantStatus int
	}{
		{"unknown kind", "Checking", "2000", "hunter22", http.StatusBadRequest},
		{"low balance", "Savings", "1000", "hunter22", http.StatusBadRequest},
		{"bad amount", "Savings", "abc", "hunter22", http.StatusBadRequest},
		{"short password", "Savings", "2000", "pw", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, srv.URL+"/accounts", "", map[string]any{
				"kind":            tt.kind,
				"customer_name":   "X",
				"initial_balance": tt.balance,
				"password":        tt.password,
			})
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status=%d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	number := createAccount(t, srv, "Alice", "Savings", "2000")

	resp, _ := postJSON(t, srv.URL+"/login", "", map[string]string{
		"account_number": number,
		"password":       "wrong",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("wrong password status=%d, want 404", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/login", "", map[string]string{
		"account_number": "BT0000000000",
		"password":       "hunter22",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown account status=%d, want 404", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/account/deposit", "", map[string]string{"amount": "100"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status=%d, want 401", resp.StatusCode)
	}
}

func TestDepositWithdrawFlow(t *testing.T) {
	srv := newTestServer(t)
	number := createAccount(t, srv, "Alice", "Savings", "2000")
	token := login(t, srv, number)

	resp, body := postJSON(t, srv.URL+"/account/deposit", token, map[string]string{"amount": "500"})
	if resp.StatusCode != http.StatusOK || body["balance"] != "2500.00" {
		t.Fatalf("deposit status=%d body=%v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, srv.URL+"/account/withdraw", token, map[string]string{"amount": "1500"})
	if resp.StatusCode != http.StatusOK || body["balance"] != "1000.00" {
		t.Fatalf("withdraw status=%d body=%v", resp.StatusCode, body)
	}

	// Next withdrawal would drop below the Savings floor.
	resp, _ = postJSON(t, srv.URL+"/account/withdraw", token, map[string]string{"amount": "1"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("floor violation status=%d, want 422", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/account/deposit", token, map[string]string{"amount": "-5"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative deposit status=%d, want 400", resp.StatusCode)
	}
}

func TestTransferFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := createAccount(t, srv, "Alice", "Savings", "5000")
	bob := createAccount(t, srv, "Bob", "Savings", "2000")
	token := login(t, srv, alice)

	resp, _ := postJSON(t, srv.URL+"/account/transfer", token, map[string]string{
		"to_account_number": bob,
		"amount":            "2000",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer status=%d", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/account/transfer", token, map[string]string{
		"to_account_number": alice,
		"amount":            "10",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self transfer status=%d, want 400", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/account/transfer", token, map[string]string{
		"to_account_number": "BT0000000000",
		"amount":            "10",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown recipient status=%d, want 404", resp.StatusCode)
	}
}

func TestHistoryAndStatement(t *testing.T) {
	srv := newTestServer(t)
	number := createAccount(t, srv, "Alice", "Savings", "2000")
	token := login(t, srv, number)

	_, _ = postJSON(t, srv.URL+"/account/deposit", token, map[string]string{"amount": "300"})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/account/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var history []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	// INITIAL DEPOSIT plus the deposit, newest first.
	if len(history) != 2 || history[0]["type"] != "DEPOSIT" || history[1]["type"] != "INITIAL DEPOSIT" {
		t.Errorf("history = %v", history)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/account/statement", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("statement status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("statement content type = %q", ct)
	}
	doc, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(doc, []byte(number)) {
		t.Errorf("statement missing account number:\n%s", doc)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	srv := newTestServer(t)
	number := createAccount(t, srv, "Alice", "Savings", "2000")
	token := login(t, srv, number)

	resp, _ := postJSON(t, srv.URL+"/account/password", token, map[string]string{
		"old_password": "wrong",
		"new_password": "new-secret",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("wrong old password status=%d, want 403", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/account/password", token, map[string]string{
		"old_password": "hunter22",
		"new_password": "new-secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("change password status=%d", resp.StatusCode)
	}
}

func TestRecoverAccountNumber(t *testing.T) {
	srv := newTestServer(t)
	number := createAccount(t, srv, "Alice", "Savings", "2000")

	resp, body := postJSON(t, srv.URL+"/accounts/recover", "", map[string]string{
		"govt_id":        "ID-Alice",
		"contact_number": "555-Alice",
	})
	if resp.StatusCode != http.StatusOK || body["account_number"] != number {
		t.Errorf("recover status=%d body=%v", resp.StatusCode, body)
	}
}

func TestComplaintsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/complaints", "", map[string]string{
		"kind":    "Scam",
		"details": "fake caller",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register complaint status=%d", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/complaints", "", map[string]string{
		"kind":    "Bogus",
		"details": "x",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown kind status=%d, want 400", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/complaints")
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	var grouped map[string][]map[string]any
	if err := json.NewDecoder(getResp.Body).Decode(&grouped); err != nil {
		t.Fatal(err)
	}
	if len(grouped["Scam"]) != 1 || len(grouped["Other"]) != 0 {
		t.Errorf("grouped = %v", grouped)
	}
}

func TestListAccountsOrdering(t *testing.T) {
	srv := newTestServer(t)
	createAccount(t, srv, "Zoe", "Current", "3000")
	createAccount(t, srv, "Alice", "Savings", "2000")

	resp, err := http.Get(srv.URL + "/accounts")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var accounts []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len=%d, want 2", len(accounts))
	}
	if accounts[0]["customer_name"] != "Alice" {
		t.Errorf("expected Alice first, got %v", accounts[0]["customer_name"])
	}
	if fmt.Sprint(accounts[0]["password_hash"]) != "<nil>" {
		t.Errorf("password hash leaked in listing: %v", accounts[0])
	}
}
