package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetingbot/internal/api"
	"meetingbot/internal/auth"
	"meetingbot/internal/calendar"
	"meetingbot/internal/dispatcher"
	"meetingbot/internal/eventref"
	"meetingbot/internal/library"
	"meetingbot/internal/llm"
	"meetingbot/internal/middleware"
	"meetingbot/internal/parser"
	"meetingbot/internal/telegram"
	"meetingbot/internal/users"
	"meetingbot/pkg/config"
	"meetingbot/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig()

	if cfg.TelegramToken == "" {
		logrus.Fatal("TELEGRAM_TOKEN is not set")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logrus.Fatalf("Invalid TIMEZONE %q: %v", cfg.TimeZone, err)
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("Failed to migrate the database: %v", err)
	}

	calendarClient, err := calendar.NewClient(cfg, database, loc)
	if err != nil {
		logrus.Fatalf("Failed to initialize Google Calendar client: %v", err)
	}

	llmService := llm.NewService(cfg)
	parserService := parser.NewService(llmService, loc)
	refStore := eventref.NewMemoryStore()
	dispatcherService := dispatcher.NewService(calendarClient, llmService, parserService, refStore)

	telegramHandler, err := telegram.NewHandler(cfg, dispatcherService, parserService)
	if err != nil {
		logrus.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	libraryService := library.NewService(library.NewRepository(database))
	userService := users.NewService(users.NewRepository(database))

	apiHandler := api.NewHandler(libraryService, userService, cfg.JWTSigningKey)

	mux := http.NewServeMux()

	switch cfg.DeployMode {
	case "webhook":
		if err := telegramHandler.SetupWebhook(); err != nil {
			logrus.Fatalf("Failed to set up webhook: %v", err)
		}
		mux.HandleFunc("/webhook", telegramHandler.HandleWebhook)
		logrus.Info("Telegram bot running in webhook mode")
	default:
		telegramHandler.StartPolling()
	}

	mux.Handle("/books", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.BooksHandler)))
	mux.Handle("/authors", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.ListAuthorsHandler)))
	mux.Handle("/user-list", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.UserListHandler)))
	mux.Handle("/create-user", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.CreateUserHandler)))

	mux.Handle("/auth/register", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.RegisterWebUserHandler)))
	mux.Handle("/auth/login", middleware.CORSMiddleware(http.HandlerFunc(apiHandler.AuthLoginHandler)))

	deleteAllUsersHandler := http.HandlerFunc(apiHandler.DeleteAllUsersHandler)
	mux.Handle("/delete-all-user", middleware.CORSMiddleware(auth.JWTMiddleware(deleteAllUsersHandler, cfg.JWTSigningKey)))

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		logrus.Infof("Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Failed to shut down server: %v", err)
	}

	logrus.Info("Server stopped")
}
