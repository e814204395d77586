package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/booklab/booksearch/internal/config"
	"github.com/booklab/booksearch/internal/esquery"
	"github.com/booklab/booksearch/internal/model"
	"github.com/booklab/booksearch/internal/service"
	"github.com/booklab/booksearch/internal/validator"
)

var loadCmd = &cobra.Command{
	Use:   "load <books.json>",
	Short: "Bulk-load a JSON array of books into the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if !esquery.IsValidJSON(string(data)) {
		return fmt.Errorf("%s is not valid JSON", args[0])
	}
	var books []model.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return fmt.Errorf("parse %s: a JSON array of books is expected: %w", args[0], err)
	}

	v := validator.New()
	for i := range books {
		books[i].Trim()
		if err := v.ValidateBook(books[i]); err != nil {
			return fmt.Errorf("book %d (%q): %w", i, books[i].Title, err)
		}
	}

	svc := service.NewBookService(
		cfg.Elasticsearch.URL,
		cfg.Elasticsearch.SkipTLSVerify,
		cfg.Elasticsearch.Username,
		cfg.Elasticsearch.Password,
		cfg.Elasticsearch.BookIndex,
	)
	if !svc.BulkImport(context.Background(), books) {
		return fmt.Errorf("bulk load of %d books did not fully succeed", len(books))
	}
	log.Printf("load: %d books written to %s", len(books), cfg.Elasticsearch.BookIndex)
	return nil
}
