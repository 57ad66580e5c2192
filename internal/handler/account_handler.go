// internal/handler/account_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// AccountHandler manages sender accounts: CRUD plus the connection test that
// flips an account to connected.
type AccountHandler struct {
	Repo   repository.AccountRepositoryInterface
	Sender mailer.Sender
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Repo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type         string `json:"type"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		Host         string `json:"host"`
		Port         int    `json:"port"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		UseSSL       bool   `json:"use_ssl"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	kind := body.Type
	if kind == "" {
		kind = model.AccountKindSMTP
	}

	switch kind {
	case model.AccountKindSMTP:
		if body.Name == "" || body.Email == "" || body.Host == "" ||
			body.Port == 0 || body.Username == "" || body.Password == "" {
			writeError(w, http.StatusBadRequest, "all fields are required")
			return
		}
	case model.AccountKindGmail:
		if body.Email == "" || body.ClientID == "" || body.ClientSecret == "" || body.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "email and OAuth credentials are required")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown account type")
		return
	}

	account := &model.Account{
		ID:           uuid.NewString(),
		Kind:         kind,
		Name:         body.Name,
		Email:        body.Email,
		Host:         body.Host,
		Port:         body.Port,
		Username:     body.Username,
		Password:     body.Password,
		UseSSL:       body.UseSSL,
		ClientID:     body.ClientID,
		ClientSecret: body.ClientSecret,
		RefreshToken: body.RefreshToken,
		// Connected flips after a successful test send.
		Connected: false,
	}

	if err := h.Repo.Create(account); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("email", account.Email).Str("kind", account.Kind).Msg("account added")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account added successfully",
		"id":      account.ID,
	})
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Repo.Delete(id); err != nil {
		var notFound *appErrors.ErrAccountNotFound
		status := http.StatusInternalServerError
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Account deleted successfully"})
}

// TestAccount performs a probe send through the account and records the
// outcome on the connected flag.
func (h *AccountHandler) TestAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID string `json:"accountId"`
		TestEmail string `json:"testEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if body.AccountID == "" {
		writeError(w, http.StatusBadRequest, "account ID is required")
		return
	}
	if body.TestEmail == "" {
		writeError(w, http.StatusBadRequest, "test email address is required")
		return
	}

	account, err := h.Repo.GetByID(body.AccountID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	msg := mailer.Message{
		To:      body.TestEmail,
		Subject: "Test Email from Email Automation System",
		Body:    "This is a test email to verify your account configuration is working correctly.",
	}
	if err := h.Sender.Send(r.Context(), *account, msg); err != nil {
		_ = h.Repo.SetConnected(account.ID, false)
		log.Warn().Str("email", account.Email).Err(err).Msg("account test failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.SetConnected(account.ID, true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("email", account.Email).Msg("account tested successfully")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Account connection successful"})
}
