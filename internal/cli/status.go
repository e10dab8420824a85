package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/adapters/backend"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the model service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.Timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("model service at %s is unreachable: %w", cfg.Backend.URL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Model service at %s is reachable\n", cfg.Backend.URL)
	return nil
}
