package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/minibank/minibank/config"
	"github.com/minibank/minibank/internal/application"
	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/pkg/broker"
	"github.com/minibank/minibank/pkg/helpers"
	"github.com/minibank/minibank/pkg/mailer"
)

// Worker binary: no HTTP surface, just the two mail-sending consumers.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger("mailer", cfg.Env)

	var mg *mailer.Mailgun
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("MAIL_SEND_ENABLED=true but Mailgun is not configured")
		}
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Warn("MAIL_SEND_ENABLED=false; emails will be logged, not sent")
	}

	mb := broker.NewRabbitMQ(cfg.RabbitMQURL, logger)
	defer mb.Close()

	scope := func() events.EmailSender {
		return application.NewEmailService(mg, cfg.ConfirmEmailURL, logger)
	}
	consumer := events.NewMailerConsumer(mb, scope, logger)
	if err := consumer.Start(); err != nil {
		log.Fatalf("consumer start: %v", err)
	}

	logger.Info("mailer worker running")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("mailer worker shutting down")
}
