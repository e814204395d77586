package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/booklab/booksearch/internal/config"
	"github.com/booklab/booksearch/internal/service"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the whole book index to stdout as a JSON array",
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
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
	fmt.Print(svc.Dump(context.Background()))
	return nil
}
