// cmd/server/main.go
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mailpilot/mailpilot-backend/internal/config"
	"github.com/mailpilot/mailpilot-backend/internal/controller"
	"github.com/mailpilot/mailpilot-backend/internal/db"
	"github.com/mailpilot/mailpilot-backend/internal/handler"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
	"github.com/mailpilot/mailpilot-backend/internal/service"
	"github.com/mailpilot/mailpilot-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on OS environment variables")
	}

	cfg := config.New()
	setupLogger(cfg)

	conn, err := db.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer conn.Close()

	accountRepo := &repository.AccountRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	templateRepo := &repository.TemplateRepository{DB: conn}

	attachments, err := storage.NewAttachmentStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("attachment store init failed")
	}

	// Delivery events go to RabbitMQ when configured; otherwise an
	// in-memory queue with a logging subscriber keeps them visible.
	var events queue.Publisher
	if cfg.AMQPURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("amqp init failed")
		}
		defer pub.Close()
		events = pub
	} else {
		mem := queue.NewInMemoryQueue()
		mem.Subscribe(queue.EventsQueue, func(payload any) error {
			log.Debug().Interface("event", payload).Msg("delivery event")
			return nil
		})
		events = mem
	}

	sender := &mailer.Router{
		Gmail: &mailer.GmailSender{},
		SMTP:  &mailer.SMTPSender{},
	}

	campaignService := service.NewCampaignService(
		accountRepo,
		contactRepo,
		templateRepo,
		attachments,
		sender,
		events,
		log.With().Str("component", "dispatch").Logger(),
	)

	campaignController := &controller.CampaignController{CampaignService: campaignService}
	accountHandler := &handler.AccountHandler{Repo: accountRepo, Sender: sender}
	contactHandler := &handler.ContactHandler{Repo: contactRepo}
	templateHandler := &handler.TemplateHandler{Repo: templateRepo}
	attachmentHandler := &handler.AttachmentHandler{Store: attachments}

	r := chi.NewRouter()

	// Accounts
	r.Get("/smtp/accounts", accountHandler.ListAccounts)
	r.Post("/smtp/accounts", accountHandler.CreateAccount)
	r.Delete("/smtp/accounts/{id}", accountHandler.DeleteAccount)
	r.Post("/smtp/test", accountHandler.TestAccount)

	// Contacts
	r.Get("/get-contacts", contactHandler.GetContacts)
	r.Post("/save-contacts", contactHandler.SaveContacts)
	r.Post("/upload-contacts", contactHandler.UploadContacts)

	// Templates
	r.Get("/get-templates", templateHandler.GetTemplates)
	r.Post("/save-templates", templateHandler.SaveTemplates)

	// Attachments
	r.Post("/upload-attachment", attachmentHandler.UploadAttachment)
	r.Get("/get-attachments", attachmentHandler.GetAttachments)
	r.Post("/delete-attachment", attachmentHandler.DeleteAttachment)

	// Campaign
	r.Post("/send-emails", campaignController.SendEmails)
	r.Get("/campaign-status", campaignController.CampaignStatus)
	r.Post("/reset-campaign", campaignController.ResetCampaign)
	r.Post("/stop-campaign", campaignController.StopCampaign)

	log.Info().Str("addr", cfg.ListenAddr).Msg("server running")
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.LogFormat == "console" || cfg.LogFormat == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
