package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"royal-terminal/internal/backend"
	"royal-terminal/internal/catalog"
	"royal-terminal/internal/config"
	"royal-terminal/internal/conversation"
	"royal-terminal/internal/exchange"
	"royal-terminal/internal/logging"
	"royal-terminal/internal/storage"
	"royal-terminal/internal/ui"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	ConfigPath    string
	BackendURL    string
	StorageDriver string
}

var rootCmd = &cobra.Command{
	Use:   "royal-terminal",
	Short: "A terminal chat client for the Royal AI backend",
	Args:  cobra.NoArgs,
}

func main() {
	var opts options

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), opts)
	}
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the config file (default ~/.royal-terminal/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.BackendURL, "backend", "", "Backend base URL")
	rootCmd.PersistentFlags().StringVar(&opts.StorageDriver, "storage", "", "Storage driver: badger or sqlite")
	rootCmd.AddCommand(newListCmd(&opts))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFrom(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.BackendURL != "" {
		cfg.BackendURL = opts.BackendURL
	}
	if opts.StorageDriver != "" {
		cfg.UseDriver(opts.StorageDriver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logger: %v\n", err)
	}
	defer logging.Close()

	persister, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer persister.Close()

	cat, err := catalog.FromConfig(cfg.Models)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := conversation.NewStore(persister, conversation.WithDebounce(cfg.PersistDebounce))
	store.Initialize(ctx)

	client := backend.NewClient(cfg.BackendURL)
	notifier, notifications := ui.NewNotifier(32)
	orchestrator := exchange.NewOrchestrator(store, client, cat, notifier)

	// Reachability is only logged
	go func() {
		_ = exchange.Probe(ctx, client)
	}()

	logging.Info("Starting with backend=%s storage=%s:%s models=%v",
		client.BaseURL(), cfg.Storage.Driver, cfg.Storage.Path, cat.Labels())

	model := newAppModel(ctx, appDeps{
		store:         store,
		orchestrator:  orchestrator,
		catalog:       cat,
		notifications: notifications,
		imagesDir:     cfg.ImagesDir,
	}, 80, 24)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()

	orchestrator.CancelAll()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := store.Close(closeCtx); err != nil {
		logging.Error("Final save failed: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("error running program: %w", runErr)
	}
	return nil
}
