package app

import (
	"context"
	"fmt"

	configapp "github.com/rhonimohanraj/anti-bot/internal/application/config"
	"github.com/rhonimohanraj/anti-bot/internal/application/doctor"
	"github.com/rhonimohanraj/anti-bot/internal/application/workflow"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/ai"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/config"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/executor"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/fsys"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/history"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/security"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/sessionstore"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/status"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/filesystem"
	"github.com/rhonimohanraj/anti-bot/internal/pkg/logger"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Options selects the config file and log verbosity.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.SlogLogger
	Guardrail      *security.Guardrail
	Files          *fsys.Local
	Executor       *executor.LocalExecutor
	Sessions       *sessionstore.FileStore
	HistoryStore   *history.SQLiteStore
	Status         *status.Collector
	Providers      ports.ProviderFactory
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph. Nothing here touches the
// network; the model client and the bot connect when serving starts.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   filesystem.ExpandHome(cfg.Logging.File),
	}
	if opts.Verbose {
		logOpts.Level = "debug"
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, err
	}

	guardrail, err := security.NewGuardrail(cfg.GetBlockedCommands(), filesystem.ExpandHome(cfg.Security.RulesFile))
	if err != nil {
		log.Warn("guardrail rules unusable, falling back to blocklist only", map[string]interface{}{
			"rules_file": cfg.Security.RulesFile,
			"error":      err.Error(),
		})
		guardrail, err = security.NewGuardrail(cfg.GetBlockedCommands(), "")
		if err != nil {
			return nil, err
		}
	}

	files, err := fsys.New(cfg.GetMaxFileSize(), cfg.Workspace.ProtectedPaths)
	if err != nil {
		return nil, err
	}

	var historyStore *history.SQLiteStore
	if cfg.History.Enabled {
		historyStore = history.NewSQLiteStore(filesystem.ExpandHome(cfg.History.Path))
		if historyStore.Degraded() {
			log.Warn("sqlite unavailable, history falls back to jsonl", map[string]interface{}{"path": historyStore.Path()})
		}
	}

	collector := status.NewCollector()
	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Guardrail:      guardrail,
		Files:          files,
		Executor:       executor.NewLocalExecutor(cfg.GetExecutionShell()),
		Sessions:       sessionstore.NewFileStore(cfg.Sessions.Dir),
		HistoryStore:   historyStore,
		Status:         collector,
		Providers:      ai.NewFactory(),
	}
	c.DoctorService = &doctor.Service{
		ConfigProvider:  cfgLoader,
		SecurityService: guardrail,
		StatusCollector: collector,
	}
	if historyStore != nil {
		c.DoctorService.History = historyStore
	}
	return c, nil
}

// History returns the action index, or nil when history is disabled.
func (c *Container) History() ports.HistoryRepository {
	if c.HistoryStore == nil {
		return nil
	}
	return c.HistoryStore
}

// NewCoordinator builds a workflow coordinator for modelName, or the
// default model when modelName is empty.
func (c *Container) NewCoordinator(modelName string) (*workflow.Coordinator, error) {
	if err := configapp.Validate(c.Config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	model, err := c.Config.GetDefaultModel()
	if modelName != "" {
		var found bool
		if model, found = c.Config.FindModelByName(modelName); !found {
			return nil, fmt.Errorf("model %s not found in config", modelName)
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}
	provider, err := c.Providers.ForModel(model)
	if err != nil {
		return nil, err
	}

	return workflow.NewCoordinator(workflow.Dependencies{
		Model:    provider,
		Files:    c.Files,
		Shell:    c.Executor,
		Security: c.Guardrail,
		Sink:     c.Sessions,
		History:  c.History(),
		Status:   c.Status,
		Logger:   c.Logger.With(map[string]interface{}{"model": model.Name}),
	}, workflow.OptionsFromConfig(&c.Config, model))
}

// Close releases the log file and database handle.
func (c *Container) Close() error {
	var firstErr error
	if c.HistoryStore != nil {
		if err := c.HistoryStore.Close(); err != nil {
			firstErr = err
		}
	}
	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
