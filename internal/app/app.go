// Package app assembles the course bot from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/coursebot/core/bootstrap"
	corecmd "github.com/m3rciful/coursebot/core/cmd"
	coreconfig "github.com/m3rciful/coursebot/core/config"
	coredatabase "github.com/m3rciful/coursebot/core/database"
	"github.com/m3rciful/coursebot/core/logger"
	coretelegram "github.com/m3rciful/coursebot/core/telegram"
	"github.com/m3rciful/coursebot/core/telegram/router"
	"github.com/m3rciful/coursebot/core/telegram/sender"
	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/bot"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/favorites"
	"github.com/m3rciful/coursebot/internal/keepalive"
	"github.com/m3rciful/coursebot/internal/metrics"
	"github.com/m3rciful/coursebot/internal/nav"
)

// App is a bootstrapped bot ready to run.
type App struct {
	cfg       *coreconfig.Config
	infra     *bootstrap.Result
	catalog   *catalog.Catalog
	favorites favorites.Repository
	closeFavs func() error
	bot       *bot.Bot
}

// New initializes logging, loads the catalog and opens the favorites backend. A missing or
// invalid catalog is fatal.
func New(ctx context.Context, cfg *coreconfig.Config) (*App, error) {
	usePostgres := cfg.Favorites.Backend == coreconfig.FavoritesPostgres
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:      cfg,
		UseDatabase: usePostgres,
		Migrate:     migrateFavorites,
	})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err == nil {
		err = action.CheckCatalog(cat)
	}
	if err != nil {
		_ = infra.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	repo, closeFavs, err := OpenFavorites(cfg, infra.DB)
	if err != nil {
		_ = infra.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	return &App{
		cfg:       cfg,
		infra:     infra,
		catalog:   cat,
		favorites: repo,
		closeFavs: closeFavs,
		bot:       bot.New(nav.NewEngine(cat, repo)),
	}, nil
}

func migrateFavorites(ctx context.Context, cfg coreconfig.DatabaseConfig) error {
	return coredatabase.RunMigrations(ctx, cfg, favorites.Migrations, favorites.MigrationsDir)
}

// OpenFavorites opens the configured favorites backend. db is used by the postgres backend
// and may be nil otherwise. The returned func releases the backend.
func OpenFavorites(cfg *coreconfig.Config, db *sqlx.DB) (favorites.Repository, func() error, error) {
	noop := func() error { return nil }
	logger.Favorites.Info("favorites backend",
		slog.String("event", "favorites.open"),
		slog.String("backend", cfg.Favorites.Backend),
	)
	switch cfg.Favorites.Backend {
	case coreconfig.FavoritesPostgres:
		if db == nil {
			return nil, nil, errors.New("postgres favorites backend needs a database connection")
		}
		return favorites.NewPostgresStore(db), noop, nil
	case coreconfig.FavoritesBadger:
		store, err := favorites.OpenBadger(cfg.Favorites.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case coreconfig.FavoritesFile, "":
		return favorites.NewFileStore(cfg.Favorites.Path), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown favorites backend %q", cfg.Favorites.Backend)
}

// Catalog returns the loaded catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Bot returns the transport adapter.
func (a *App) Bot() *bot.Bot { return a.bot }

// TelegramRunOptions registers the bot on a fresh registry and builds the routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.bot.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{UnknownMedia: a.bot.OnMedia})...)

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		DispatcherOptions: sender.Options{
			Workers:   a.cfg.Delivery.Workers,
			QueueSize: a.cfg.Delivery.QueueSize,
		},
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, coretelegram.MiddlewareOptions{
			OnLimited: a.bot.OnLimited,
			OnPanic:   a.bot.OnPanic,
			Extra:     []coretelegram.Middleware{{Name: "prometheus", Use: metrics.Middleware}},
		}),
		Routes: routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.Close()
		},
	}, nil
}

// BackgroundTasks runs the liveness responder next to the bot unless disabled.
func (a *App) BackgroundTasks() []corecmd.Task {
	if a.cfg.KeepAlive.Disabled {
		return nil
	}
	ka := a.cfg.KeepAlive
	return []corecmd.Task{{
		Name: "keepalive",
		Run: func(ctx context.Context) error {
			return keepalive.Run(ctx, keepalive.Options{
				Port:     ka.Port,
				URL:      ka.URL,
				Interval: ka.Interval,
				Gatherer: metrics.Registry,
			})
		},
	}}
}

// Close releases the favorites backend and the database.
func (a *App) Close() error {
	var errs []error
	if a.closeFavs != nil {
		errs = append(errs, a.closeFavs())
		a.closeFavs = nil
	}
	errs = append(errs, a.infra.Close())
	a.infra = nil
	return errors.Join(errs...)
}

var (
	_ corecmd.TelegramApp   = (*App)(nil)
	_ corecmd.BackgroundApp = (*App)(nil)
	_ io.Closer             = (*App)(nil)
)
