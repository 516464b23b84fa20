package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/activity"
	"github.com/bix-dev/bixdash/internal/auth"
	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/config"
	"github.com/bix-dev/bixdash/internal/kv"
	"github.com/bix-dev/bixdash/internal/logging"
	"github.com/bix-dev/bixdash/internal/model"
	"github.com/bix-dev/bixdash/internal/source"
	"github.com/bix-dev/bixdash/internal/transactions"
)

// app is the set of services one command invocation works with. The
// storage capability is decided here, once.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	clock    clock.Clock
	store    *cache.Store
	gate     *auth.Gate
	activity *activity.Recorder
	out      io.Writer

	closers []func() error
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	log, err := logging.Console(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	cfg, log, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	medium, closeMedium, err := kv.Open(cmd.Context(), cfg.StorageOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	store := cache.NewStore(medium, o.clock, log)
	return &app{
		cfg:      cfg,
		log:      log,
		clock:    o.clock,
		store:    store,
		gate:     auth.NewGate(store, o.clock, cfg.Credentials(), cfg.Auth.LoginDelay.Std(), log),
		activity: activity.NewRecorder(cfg.Activity.Dir, o.clock, log),
		out:      cmd.OutOrStdout(),
		closers:  []func() error{closeMedium},
	}, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// session resolves the current authentication state the way a freshly
// mounted view does: after the initial check delay.
func (a *app) session() auth.SessionState {
	s := a.gate.NewSession()
	s.Start()
	<-s.Ready()
	return s.State()
}

// requireAuth guards the dashboard routes.
func (a *app) requireAuth() (*model.AuthToken, error) {
	state := a.session()
	d, err := auth.Guard(auth.RouteDashboard, state)
	if err != nil {
		return nil, err
	}
	if !d.Allowed() {
		return nil, fmt.Errorf("%w: run `bixdash login` first", auth.ErrUnauthenticated)
	}
	return state.Token, nil
}

// loader returns a transaction loader over the configured source. The
// store stays open until its background work has finished.
func (a *app) loader() (*transactions.Loader, error) {
	client, err := source.NewClient(a.cfg.Source.URL, a.cfg.Source.Timeout.Std())
	if err != nil {
		return nil, err
	}
	l := transactions.New(a.store, client, a.log)
	a.closers = append(a.closers, func() error {
		l.Close()
		l.Wait()
		return nil
	})
	return l, nil
}

// mount loads the collection and fails when nothing can be shown.
func (a *app) mount(cmd *cobra.Command) (*transactions.Loader, transactions.Snapshot, error) {
	l, err := a.loader()
	if err != nil {
		return nil, transactions.Snapshot{}, err
	}
	snap := l.Mount(cmd.Context())
	if !snap.Servable() {
		return nil, snap, fmt.Errorf("loading transactions: %s", snap.Err)
	}
	return l, snap, nil
}

func actor(tok *model.AuthToken) string {
	if tok == nil || tok.User == nil {
		return "anonymous"
	}
	return tok.User.Email
}
