package main

import (
	"fmt"
	"io"

	"github.com/kylerisse/dadboard/pkg/actionlog"
	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/kylerisse/dadboard/pkg/config"
	"github.com/kylerisse/dadboard/pkg/machine"
	"github.com/kylerisse/dadboard/pkg/status"
	"github.com/kylerisse/dadboard/pkg/trigger"
	"github.com/sirupsen/logrus"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg        *config.Config
	games      []config.Game
	logger     *logrus.Logger
	board      *board.Board
	dispatcher *trigger.Dispatcher
	actions    *actionlog.Store
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}

// loadApp reads the config and game list and wires the board, the
// dispatcher and the optional action log.
func loadApp(flags *rootFlags, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	games, err := config.LoadGames(flags.gamesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger, err := newLogger(level, logOut)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	reader, err := status.NewFileReader(status.WithStaleAfter(cfg.StaleAfter()))
	if err != nil {
		return nil, err
	}

	var boardOpts []board.Option
	if cfg.DNSServer != "" {
		resolver, err := machine.NewResolver(cfg.DNSServer)
		if err != nil {
			return nil, err
		}
		boardOpts = append(boardOpts, board.WithResolver(resolver))
	}

	runner, err := trigger.NewSchtasks(trigger.WithBinary(cfg.Schtasks))
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		games:  games,
		logger: logger,
		board:  board.New(cfg.Machines(), reader, logger, boardOpts...),
	}

	var dispatchOpts []trigger.DispatcherOption
	if cfg.ActionLog != "" {
		store, err := actionlog.Open(cfg.ActionLog)
		if err != nil {
			return nil, err
		}
		a.actions = store
		dispatchOpts = append(dispatchOpts, trigger.WithRecorder(store))
	}
	a.dispatcher = trigger.NewDispatcher(runner, cfg.PCs, logger, dispatchOpts...)

	logger.Debugf("Loaded %d PC(s) and %d game(s)", len(cfg.PCs), len(games))
	return a, nil
}

func (a *app) close() {
	if err := a.actions.Close(); err != nil {
		a.logger.Warnf("Failed to close action log: %v", err)
	}
}
