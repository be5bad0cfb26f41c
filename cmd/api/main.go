package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/database"
	"github.com/fridgechef/backend/internal/server"
	"github.com/fridgechef/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := newCollectionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize collection storage: %v", err)
	}

	gateway := service.NewChatGateway(cfg)
	workflow := service.NewWorkflow(gateway, store)

	srv := server.NewServer(cfg, workflow)
	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		log.Printf("Starting server on %s...", addr)
		errChan <- srv.Start(addr)
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// newCollectionStore picks the configured durable storage backend.
func newCollectionStore(cfg *config.Config) (service.CollectionStore, error) {
	if cfg.StorageBackend == config.StorageRedis {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return service.NewRedisCollectionStore(client), nil
	}

	db, err := database.NewSQLiteDB(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return service.NewSQLiteCollectionStore(db), nil
}
