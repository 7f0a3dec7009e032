package commands

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/config"
	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/logging"
	"github.com/tallybook-dev/tallybook/internal/match"
	"github.com/tallybook-dev/tallybook/internal/recon"
)

// book bundles the services a command needs, wired from a book directory.
type book struct {
	root     string
	cfg      *config.Config
	accounts *accounts.Service
	ledger   *ledger.Service
	recons   *recon.Store
	sessions *recon.Service
	engine   *match.Engine
	log      *zap.Logger
}

// openBook loads config and services from a book root.
func openBook(dir, logLevel string) (*book, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, "tallybook.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	accts, err := accounts.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading chart of accounts: %w", err)
	}

	log, err := logging.New(logLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	recons := recon.NewStore(root)
	led := ledger.NewService(root, accts, recons, ledger.GSTAccounts{
		Paid:      cfg.GST.PaidAccount,
		Collected: cfg.GST.CollectedAccount,
	})

	return &book{
		root:     root,
		cfg:      cfg,
		accounts: accts,
		ledger:   led,
		recons:   recons,
		sessions: recon.NewService(recons, led, log),
		engine:   match.NewEngine(led, cfg.Match.WindowDays, log),
		log:      log,
	}, nil
}
