package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/booklab/booksearch/internal/config"
	"github.com/booklab/booksearch/internal/handler"
	"github.com/booklab/booksearch/internal/router"
	"github.com/booklab/booksearch/internal/service"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP API",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	svc := service.NewBookService(
		cfg.Elasticsearch.URL,
		cfg.Elasticsearch.SkipTLSVerify,
		cfg.Elasticsearch.Username,
		cfg.Elasticsearch.Password,
		cfg.Elasticsearch.BookIndex,
	)

	bookHandler := handler.NewBookHandler(svc)
	srv := &http.Server{
		Addr:              cfg.AppHost + ":" + cfg.HTTPPort,
		Handler:           router.New(bookHandler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("HTTP server listening on %s", srv.Addr)
	log.Printf("  Health:  http://%s/health", srv.Addr)
	log.Printf("  Books:   http://%s/books", srv.Addr)
	log.Printf("  Index:   %s (%s)", cfg.Elasticsearch.BookIndex, cfg.Elasticsearch.URL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
