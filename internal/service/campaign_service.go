// internal/service/campaign_service.go
package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot-backend/internal/dispatch"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
	"github.com/mailpilot/mailpilot-backend/internal/storage"
)

// CampaignService validates campaign starts and owns the lifecycle of the
// single in-flight dispatcher. Only one campaign may run per process.
type CampaignService struct {
	AccountRepo  repository.AccountRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Attachments  storage.AttachmentStoreInterface
	Sender       mailer.Sender
	Events       queue.Publisher
	Log          zerolog.Logger

	mu      sync.Mutex
	status  *dispatch.CampaignStatus
	current *dispatch.Dispatcher
}

func NewCampaignService(
	accounts repository.AccountRepositoryInterface,
	contacts repository.ContactRepositoryInterface,
	templates repository.TemplateRepositoryInterface,
	attachments storage.AttachmentStoreInterface,
	sender mailer.Sender,
	events queue.Publisher,
	logger zerolog.Logger,
) *CampaignService {
	return &CampaignService{
		AccountRepo:  accounts,
		ContactRepo:  contacts,
		TemplateRepo: templates,
		Attachments:  attachments,
		Sender:       sender,
		Events:       events,
		Log:          logger,
		status:       dispatch.NewCampaignStatus(),
	}
}

// StartParams are the caller-supplied campaign knobs, already defaulted by
// the HTTP layer.
type StartParams struct {
	Subject        string
	AccountIDs     []string
	PauseSeconds   int
	Retries        int
	MaxConnections int
}

// Start validates every precondition, and only then populates the queue and
// launches workers. Any validation failure leaves the campaign status
// untouched. Returns ErrCampaignRunning while a previous run is draining.
func (s *CampaignService) Start(p StartParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsRunning() {
		return appErrors.ErrCampaignRunning
	}

	if p.Subject == "" {
		return appErrors.NewValidation("subject is required")
	}
	if len(p.AccountIDs) == 0 {
		return appErrors.NewValidation("please select at least one email account")
	}
	if p.MaxConnections <= 0 {
		return appErrors.NewValidation("maxConnections must be positive")
	}
	if p.Retries < 0 {
		return appErrors.NewValidation("retries cannot be negative")
	}
	if p.PauseSeconds < 0 {
		return appErrors.NewValidation("pauseBetweenMessages cannot be negative")
	}

	accounts := make([]model.Account, 0, len(p.AccountIDs))
	for _, id := range p.AccountIDs {
		account, err := s.AccountRepo.GetByID(id)
		if err != nil {
			return appErrors.NewValidation("account ID %s not found", id)
		}
		if !account.Connected {
			return appErrors.NewValidation("account %s is not connected", account.Email)
		}
		accounts = append(accounts, *account)
	}

	templates, err := s.TemplateRepo.GetAll()
	if err != nil {
		return err
	}
	hasTemplate := false
	for _, body := range templates {
		if body != "" {
			hasTemplate = true
			break
		}
	}
	if !hasTemplate {
		return appErrors.NewValidation("please save at least one email template first")
	}

	contacts, err := s.ContactRepo.ListAll()
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return appErrors.NewValidation("no valid contacts found")
	}

	paths, err := s.Attachments.ListPaths()
	if err != nil {
		return err
	}
	attachments, err := mailer.LoadAttachments(paths)
	if err != nil {
		return err
	}

	pool, err := dispatch.NewAccountPool(accounts)
	if err != nil {
		return err
	}

	cfg := dispatch.Config{
		Subject:    p.Subject,
		Retries:    p.Retries,
		Workers:    p.MaxConnections,
		Pause:      time.Duration(p.PauseSeconds) * time.Second,
		RetryDelay: dispatch.DefaultRetryDelay,
	}

	d := dispatch.New(cfg, pool, s.Sender, s.status, templates, attachments, s.Events, s.Log)
	d.Start(contacts)
	s.current = d

	return nil
}

// Status returns the current campaign snapshot for pollers.
func (s *CampaignService) Status() dispatch.Snapshot {
	return s.status.Snapshot()
}

// Reset clears the status between campaigns; refused mid-run.
func (s *CampaignService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Reset()
}

// Stop cancels the in-flight campaign, if any. Workers drain the queue so
// the status still converges to completed.
func (s *CampaignService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Stop()
	}
}
