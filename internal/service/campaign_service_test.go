package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/service"
)

type mockAccountRepo struct {
	accounts map[string]*model.Account
}

func (m *mockAccountRepo) GetByID(id string) (*model.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, appErrors.NewAccountNotFound(id)
	}
	return a, nil
}

func (m *mockAccountRepo) ListAll() ([]model.Account, error) {
	out := make([]model.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAccountRepo) Create(a *model.Account) error           { return nil }
func (m *mockAccountRepo) Delete(id string) error                  { return nil }
func (m *mockAccountRepo) SetConnected(id string, conn bool) error { return nil }

type mockContactRepo struct {
	contacts []model.Contact
}

func (m *mockContactRepo) ListAll() ([]model.Contact, error)  { return m.contacts, nil }
func (m *mockContactRepo) ReplaceAll(c []model.Contact) error { m.contacts = c; return nil }

type mockTemplateRepo struct {
	templates map[string]string
}

func (m *mockTemplateRepo) GetAll() (map[string]string, error) { return m.templates, nil }
func (m *mockTemplateRepo) SaveAll(t map[string]string) error  { m.templates = t; return nil }

type mockAttachmentStore struct{}

func (m *mockAttachmentStore) ListPaths() ([]string, error) { return nil, nil }

// blockingSender holds every send until released, keeping a campaign
// running for as long as a test needs.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSender() *blockingSender {
	return &blockingSender{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSender) Send(_ context.Context, _ model.Account, _ mailer.Message) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

type noopSender struct{}

func (noopSender) Send(context.Context, model.Account, mailer.Message) error { return nil }

func newTestService(sender mailer.Sender) *service.CampaignService {
	accounts := &mockAccountRepo{accounts: map[string]*model.Account{
		"a1": {ID: "a1", Email: "one@example.com", Kind: model.AccountKindSMTP, Connected: true},
		"a2": {ID: "a2", Email: "two@example.com", Kind: model.AccountKindSMTP, Connected: true},
		"a3": {ID: "a3", Email: "cold@example.com", Kind: model.AccountKindSMTP, Connected: false},
	}}
	contacts := &mockContactRepo{contacts: []model.Contact{
		{Email: "alice@example.com", Name: "Alice", Language: "EN"},
		{Email: "bob@example.com", Name: "Bob", Language: "EN"},
	}}
	templates := &mockTemplateRepo{templates: map[string]string{"EN": "Hi [NAME]"}}

	return service.NewCampaignService(
		accounts, contacts, templates, &mockAttachmentStore{},
		sender, nil, zerolog.Nop(),
	)
}

func validParams() service.StartParams {
	return service.StartParams{
		Subject:        "Launch",
		AccountIDs:     []string{"a1", "a2"},
		PauseSeconds:   0,
		Retries:        0,
		MaxConnections: 2,
	}
}

func TestStartValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*service.StartParams)
	}{
		{"missing subject", func(p *service.StartParams) { p.Subject = "" }},
		{"no accounts", func(p *service.StartParams) { p.AccountIDs = nil }},
		{"unknown account", func(p *service.StartParams) { p.AccountIDs = []string{"nope"} }},
		{"disconnected account", func(p *service.StartParams) { p.AccountIDs = []string{"a3"} }},
		{"zero connections", func(p *service.StartParams) { p.MaxConnections = 0 }},
		{"negative retries", func(p *service.StartParams) { p.Retries = -1 }},
		{"negative pause", func(p *service.StartParams) { p.PauseSeconds = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(noopSender{})
			p := validParams()
			tc.mutate(&p)

			err := svc.Start(p)
			if !appErrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}

			// A refused start must leave the campaign state untouched.
			snap := svc.Status()
			if snap.IsRunning || snap.Total != 0 || snap.Remaining != 0 {
				t.Errorf("status mutated by failed start: %+v", snap)
			}
		})
	}
}

func TestStartWithoutTemplates(t *testing.T) {
	svc := newTestService(noopSender{})
	svc.TemplateRepo = &mockTemplateRepo{templates: map[string]string{"EN": ""}}

	err := svc.Start(validParams())
	if !appErrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStartWithoutContacts(t *testing.T) {
	svc := newTestService(noopSender{})
	svc.ContactRepo = &mockContactRepo{}

	err := svc.Start(validParams())
	if !appErrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStartRunsToCompletion(t *testing.T) {
	svc := newTestService(noopSender{})

	if err := svc.Start(validParams()); err != nil {
		t.Fatal(err)
	}
	waitCompleted(t, svc)

	snap := svc.Status()
	if snap.Total != 2 || snap.Remaining != 0 || len(snap.Errors) != 0 {
		t.Errorf("unexpected final status: %+v", snap)
	}
	if snap.Status != "completed" {
		t.Errorf("status = %q, want completed", snap.Status)
	}
}

func TestStartRefusedWhileRunning(t *testing.T) {
	sender := newBlockingSender()
	svc := newTestService(sender)

	if err := svc.Start(validParams()); err != nil {
		t.Fatal(err)
	}
	<-sender.started

	err := svc.Start(validParams())
	if !errors.Is(err, appErrors.ErrCampaignRunning) {
		t.Errorf("expected ErrCampaignRunning, got %v", err)
	}

	close(sender.release)
	waitCompleted(t, svc)
}

func TestResetRefusedWhileRunning(t *testing.T) {
	sender := newBlockingSender()
	svc := newTestService(sender)

	if err := svc.Start(validParams()); err != nil {
		t.Fatal(err)
	}
	<-sender.started

	if err := svc.Reset(); !errors.Is(err, appErrors.ErrCampaignInProgress) {
		t.Errorf("expected ErrCampaignInProgress, got %v", err)
	}

	close(sender.release)
	waitCompleted(t, svc)

	if err := svc.Reset(); err != nil {
		t.Errorf("reset after completion failed: %v", err)
	}
	if snap := svc.Status(); snap.Total != 0 || snap.Completed {
		t.Errorf("expected cleared status, got %+v", snap)
	}
}

func TestStopConvergesStatus(t *testing.T) {
	sender := newBlockingSender()
	svc := newTestService(sender)

	p := validParams()
	p.MaxConnections = 1
	if err := svc.Start(p); err != nil {
		t.Fatal(err)
	}
	<-sender.started

	svc.Stop()
	close(sender.release)
	waitCompleted(t, svc)

	snap := svc.Status()
	if snap.Remaining != 0 || !snap.Completed {
		t.Errorf("stop did not converge: %+v", snap)
	}
}

func waitCompleted(t *testing.T, svc *service.CampaignService) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if snap := svc.Status(); snap.Completed {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("campaign never completed: %+v", svc.Status())
}
