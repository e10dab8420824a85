package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/modelcraft/internal/app/tui"
)

var workbenchCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive workbench",
	Long: `Open the interactive workbench.

Keys:
  tab / shift+tab   move between panels
  enter             upload the dataset, pick an option, or predict
  ctrl+t            train the model
  ctrl+p            run a prediction
  ctrl+r            start a new session
  esc / ctrl+c      quit`,
	Args: cobra.NoArgs,
	RunE: runWorkbench,
}

func runWorkbench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	app.Logger.Debug(fmt.Sprintf("Workbench started against %s", app.Config.Backend.URL))

	program := tea.NewProgram(tui.NewApp(ctx, app.Controller), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run workbench: %w", err)
	}
	return nil
}
