package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/karasuhime/inkwell/internal/blobstore"
	"github.com/karasuhime/inkwell/internal/common"
	"github.com/karasuhime/inkwell/internal/contentservice"
	"github.com/karasuhime/inkwell/internal/mailservice"
	"github.com/karasuhime/inkwell/internal/userservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	userService    *userservice.UserService
	contentService *contentservice.ContentService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
	blobs          blobstore.Store
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupMailExchange(broker)
	if err != nil {
		logger.Error("failed to setup the mail exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blobs, err := blobstore.NewDiskStore(cfg.BlobDir)
	if err != nil {
		logger.Error("failed to open the image store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	contentCache := common.NewCache(5*time.Minute, 10*time.Minute)
	tokenCache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, tokenCache),
		contentService: contentservice.NewContentService(db, contentCache, blobs, logger),
		mailService:    mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.ContactTarget, cfg.MailPort, logger),
		broker:         broker,
		blobs:          blobs,
	}
	defer app.mailService.Close()

	app.mailService.SendNewsletterConfirmations()
	app.mailService.ForwardContactMessages()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
