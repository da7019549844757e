package system

import (
	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/config"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/server"
	"github.com/julianstephens/littlesteps/internal/storage"
)

// ServeCmd runs the household state server. Settings come from the
// environment; flags override them.
type ServeCmd struct {
	Port  int    `help:"Listen port (overrides PORT)."`
	State string `help:"State location: .json file, SQLite path or postgres:// URL (overrides LITTLESTEPS_STATE)."`
}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	if cmd.Port != 0 {
		cfg.Port = cmd.Port
	}
	if cmd.State != "" {
		cfg.State = cmd.State
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}

	store := storage.Open(cfg.State, cfg.StoreOptions())
	if err := store.Init(); err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(server.Config{Addr: cfg.Addr(), Store: store})
	if err != nil {
		return err
	}
	logger.Info("Serving household state", "addr", cfg.Addr(), "state", store.GetConfigPath(), "backups", cfg.Backups)
	return srv.ListenAndServe(ctx.Context())
}
