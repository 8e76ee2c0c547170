package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"assetgrip/internal/config"
	"assetgrip/internal/debounce"
	"assetgrip/internal/eventbus"
	"assetgrip/internal/logging"
	"assetgrip/internal/source"
	"assetgrip/internal/ui"
)

const visibleLogInterval = time.Second

// RunOptions overrides the config for one TUI run
type RunOptions struct {
	Source   string
	Path     string
	PageSize int
}

func addRunFlags(cmd *cobra.Command, opts *RunOptions) {
	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "asset source: memory, yaml or sqlite")
	cmd.Flags().StringVarP(&opts.Path, "path", "p", "", "catalog file for yaml and sqlite sources")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "assets fetched per page")
}

// loadConfig resolves the config file, dotenv overrides and flags
func loadConfig(root *RootOptions, bus eventbus.EventBus) (*config.Config, error) {
	if err := config.LoadDotEnv(root.EnvFile); err != nil {
		return nil, err
	}

	svc := config.NewConfigServiceWithBus(bus)
	if root.ConfigPath != "" {
		svc = config.NewConfigServiceAt(root.ConfigPath, bus)
	}
	cfg, err := svc.Load()
	if err != nil {
		return nil, err
	}
	if root.Verbose {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
	return cfg, nil
}

func (o *RunOptions) apply(cfg *config.Config) error {
	if o.Source != "" {
		cfg.Source.Kind = o.Source
	}
	if o.Path != "" {
		cfg.Source.Path = o.Path
	}
	if o.PageSize != 0 {
		cfg.Source.PageSize = o.PageSize
	}
	return cfg.Validate()
}

func runTUI(ctx context.Context, root *RootOptions, run *RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(root, nil)
	if err != nil {
		return err
	}
	if err := run.apply(cfg); err != nil {
		return err
	}

	log, logFile, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	bus := eventbus.New(log)
	defer bus.Close()
	subscribeLogging(bus, log)

	provider, err := source.Open(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.Source.Kind, err)
	}
	defer provider.Close()

	model, err := ui.NewModel(ctx, ui.Options{
		Viewport: cfg.Viewport,
		Pager:    source.NewPager(provider, cfg.Source.PageSize),
		Bus:      bus,
		Log:      log,

		ReadySignal: os.Getenv(config.EnvE2ETest) != "",
	})
	if err != nil {
		return err
	}
	defer model.Close()

	log.WithFields(logrus.Fields{
		"source":    cfg.Source.Kind,
		"page_size": cfg.Source.PageSize,
	}).Info("starting UI")

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("error running program")
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info("UI exited normally")
	return nil
}

// subscribeLogging records list activity in the log file
func subscribeLogging(bus eventbus.EventBus, log logrus.FieldLogger) {
	bus.Subscribe(eventbus.EventItemsLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ItemsLoadedEvent); ok {
			log.WithFields(logrus.Fields{"count": event.Count, "total": event.Total}).Info("assets loaded")
		}
	})
	bus.Subscribe(eventbus.EventSourceExhausted, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SourceExhaustedEvent); ok {
			log.WithField("total", event.Total).Info("source exhausted")
		}
	})
	bus.Subscribe(eventbus.EventSearchChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SearchChangedEvent); ok {
			log.WithFields(logrus.Fields{"query": event.Query, "matches": event.Matches}).Debug("search changed")
		}
	})
	// Scrolling produces a visible batch every few frames
	visible := debounce.NewThrottler(visibleLogInterval)
	bus.Subscribe(eventbus.EventItemsVisible, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ItemsVisibleEvent); ok {
			visible.Call(func() {
				log.WithField("count", len(event.Items)).Debug("assets became visible")
			})
		}
	})
	bus.Subscribe(eventbus.EventListReset, func(eventbus.DomainEvent) {
		log.Info("asset list reset")
	})
}
