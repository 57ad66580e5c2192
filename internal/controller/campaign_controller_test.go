package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot-backend/internal/controller"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/service"
)

type stubAccountRepo struct {
	accounts map[string]*model.Account
}

func (s *stubAccountRepo) GetByID(id string) (*model.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, appErrors.NewAccountNotFound(id)
	}
	return a, nil
}

func (s *stubAccountRepo) ListAll() ([]model.Account, error)       { return nil, nil }
func (s *stubAccountRepo) Create(a *model.Account) error           { return nil }
func (s *stubAccountRepo) Delete(id string) error                  { return nil }
func (s *stubAccountRepo) SetConnected(id string, conn bool) error { return nil }

type stubContactRepo struct{ contacts []model.Contact }

func (s *stubContactRepo) ListAll() ([]model.Contact, error) { return s.contacts, nil }
func (s *stubContactRepo) ReplaceAll([]model.Contact) error  { return nil }

type stubTemplateRepo struct{ templates map[string]string }

func (s *stubTemplateRepo) GetAll() (map[string]string, error) { return s.templates, nil }
func (s *stubTemplateRepo) SaveAll(map[string]string) error    { return nil }

type stubAttachments struct{}

func (stubAttachments) ListPaths() ([]string, error) { return nil, nil }

type stubSender struct{}

func (stubSender) Send(context.Context, model.Account, mailer.Message) error { return nil }

func newController() *controller.CampaignController {
	svc := service.NewCampaignService(
		&stubAccountRepo{accounts: map[string]*model.Account{
			"a1": {ID: "a1", Email: "one@example.com", Connected: true},
		}},
		&stubContactRepo{contacts: []model.Contact{
			{Email: "alice@example.com", Name: "Alice", Language: "EN"},
		}},
		&stubTemplateRepo{templates: map[string]string{"EN": "Hi [NAME]"}},
		stubAttachments{},
		stubSender{},
		nil,
		zerolog.Nop(),
	)
	return &controller.CampaignController{CampaignService: svc}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestSendEmailsStartsCampaign(t *testing.T) {
	c := newController()

	req := httptest.NewRequest(http.MethodPost, "/send-emails", strings.NewReader(
		`{"subject":"Launch","selectedAccounts":["a1"],"pauseBetweenMessages":0,"retries":0,"maxConnections":1}`,
	))
	rec := httptest.NewRecorder()
	c.SendEmails(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Email campaign started!" {
		t.Errorf("unexpected body: %v", body)
	}

	waitCompleted(t, c)
}

func TestSendEmailsValidationError(t *testing.T) {
	c := newController()

	req := httptest.NewRequest(http.MethodPost, "/send-emails", strings.NewReader(
		`{"subject":"","selectedAccounts":["a1"]}`,
	))
	rec := httptest.NewRecorder()
	c.SendEmails(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg, ok := decodeBody(t, rec)["error"].(string); !ok || msg == "" {
		t.Errorf("expected error message, got %q", msg)
	}
}

func TestSendEmailsInvalidJSON(t *testing.T) {
	c := newController()

	req := httptest.NewRequest(http.MethodPost, "/send-emails", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	c.SendEmails(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCampaignStatusShape(t *testing.T) {
	c := newController()

	req := httptest.NewRequest(http.MethodGet, "/campaign-status", nil)
	rec := httptest.NewRecorder()
	c.CampaignStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	for _, key := range []string{"isRunning", "remaining", "total", "errors", "completed", "status"} {
		if _, ok := body[key]; !ok {
			t.Errorf("status response missing %q: %v", key, body)
		}
	}
	if body["isRunning"] != false || body["status"] != "completed" {
		t.Errorf("unexpected idle status: %v", body)
	}
}

func TestResetCampaign(t *testing.T) {
	c := newController()

	req := httptest.NewRequest(http.MethodPost, "/reset-campaign", nil)
	rec := httptest.NewRecorder()
	c.ResetCampaign(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func waitCompleted(t *testing.T, c *controller.CampaignController) {
	t.Helper()
	for i := 0; i < 500; i++ {
		snap := c.CampaignService.Status()
		if snap.Completed && snap.Remaining == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("campaign never completed: %+v", c.CampaignService.Status())
}
