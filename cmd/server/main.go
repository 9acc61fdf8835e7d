package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collab-chat/httpapi"
	"collab-chat/internal"
	"collab-chat/repositories"
	"collab-chat/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, sequence
// release) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.Logger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories
	conversationRepository, err := repositories.NewConversationRepository(db)
	if err != nil {
		return err
	}
	defer func() { _ = conversationRepository.Close() }()
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	membershipRepository := repositories.NewMembershipRepository(db)
	userDirectory := repositories.NewUserDirectory(db)
	sessionStore := repositories.NewSessionStore()

	// 4. Services
	registry := services.NewConversationRegistry(conversationRepository, membershipRepository, messageRepository, userDirectory, log)
	messageService := services.NewMessageService(messageRepository, userDirectory, log)
	presenceTracker := services.NewPresenceTracker(sessionStore, log)
	chatService := services.NewChatService(registry, messageService, presenceTracker, userDirectory)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           httpapi.NewRouter(chatService, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
