package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/coursebot/core/bootstrap"
	"github.com/m3rciful/coursebot/core/buildinfo"
	corecmd "github.com/m3rciful/coursebot/core/cmd"
	coreconfig "github.com/m3rciful/coursebot/core/config"
	coredatabase "github.com/m3rciful/coursebot/core/database"
	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/app"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/favorites"
	"github.com/m3rciful/coursebot/internal/search"
)

const defaultConfigPath = "config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "coursebot",
		Short:         "Telegram bot for browsing and downloading course resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $CONFIG_PATH or "+defaultConfigPath+")")

	runOpts := func() corecmd.Options {
		return corecmd.Options{
			ConfigPath:        configPath,
			DefaultConfigPath: defaultConfigPath,
		}
	}
	// loadLenient reads the config without requiring a bot token.
	loadLenient := func() (*coreconfig.Config, error) {
		path, err := runOpts().ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		return coreconfig.LoadLenient(path)
	}

	root.AddCommand(
		newRunCmd(runOpts),
		newCatalogCmd(loadLenient),
		newSearchCmd(loadLenient),
		newFavoritesCmd(loadLenient),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(opts func() corecmd.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot and its liveness endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opts()
			o.LoadConfig = func(path string) (corecmd.ConfigCarrier, error) {
				cfg, err := coreconfig.Load(path)
				if err != nil {
					return nil, err
				}
				return cfg, nil
			}
			o.Bootstrap = func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
				return app.New(ctx, cfg.CoreConfig())
			}
			return corecmd.Run(o)
		},
	}
}

func newCatalogCmd(load func() (*coreconfig.Config, error)) *cobra.Command {
	var path string
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the resource catalog",
	}
	check := &cobra.Command{
		Use:   "check",
		Short: "Load and validate the catalog, then print its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, src, err := loadCatalog(load, path)
			if err != nil {
				return err
			}
			st := cat.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", src)
			fmt.Fprintf(cmd.OutOrStdout(), "years=%d semesters=%d courses=%d files=%d\n",
				st.Years, st.Semesters, st.Courses, st.Files)
			return nil
		},
	}
	check.Flags().StringVar(&path, "catalog", "", "catalog document (default from config)")
	catalogCmd.AddCommand(check)
	return catalogCmd
}

func newSearchCmd(load func() (*coreconfig.Config, error)) *cobra.Command {
	var (
		path  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a catalog search the way the bot does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if search.TooShort(query) {
				return fmt.Errorf("query must have at least %d characters", search.MinQueryLength)
			}
			cat, _, err := loadCatalog(load, path)
			if err != nil {
				return err
			}
			matches := search.Search(cat, query, limit)
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "no matches")
				return nil
			}
			for _, m := range matches {
				loc := fmt.Sprintf("%s/%s/%s", m.Course.Year, m.Course.Semester, m.Course.Name)
				if m.Kind == search.FileMatch {
					fmt.Fprintf(out, "%s\t%s/%s\t%s\n", m.Label(), loc, m.Category, m.File.DownloadLink)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", m.Label(), loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "catalog document (default from config)")
	cmd.Flags().IntVar(&limit, "limit", search.MaxResults, "maximum number of results")
	return cmd
}

func newFavoritesCmd(load func() (*coreconfig.Config, error)) *cobra.Command {
	var from string
	favCmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage stored favorites",
	}
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy favorites from a users.json document into the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Favorites.Backend == coreconfig.FavoritesFile && cfg.Favorites.Path == from {
				return fmt.Errorf("source and destination are the same file: %s", from)
			}

			ctx := cmd.Context()
			infra, err := bootstrap.Run(ctx, bootstrap.Options{
				Config:      cfg,
				UseDatabase: cfg.Favorites.Backend == coreconfig.FavoritesPostgres,
				Migrate: func(ctx context.Context, db coreconfig.DatabaseConfig) error {
					return coredatabase.RunMigrations(ctx, db, favorites.Migrations, favorites.MigrationsDir)
				},
			})
			if err != nil {
				return err
			}
			defer infra.Close()

			dst, closeDst, err := app.OpenFavorites(cfg, infra.DB)
			if err != nil {
				return err
			}
			defer closeDst()

			st, err := favorites.Import(ctx, favorites.NewFileStore(from), dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d favorites of %d users into %s\n",
				st.Favorites, st.Users, cfg.Favorites.Backend)
			return nil
		},
	}
	importCmd.Flags().StringVar(&from, "from", "users.json", "legacy favorites document")
	favCmd.AddCommand(importCmd)
	return favCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursebot %s (commit %s, built %s)\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}

// loadCatalog loads the catalog from path or, when empty, from the configured location.
func loadCatalog(load func() (*coreconfig.Config, error), path string) (*catalog.Catalog, string, error) {
	if path == "" {
		cfg, err := load()
		if err != nil {
			return nil, "", err
		}
		path = cfg.Catalog.Path
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := action.CheckCatalog(cat); err != nil {
		return nil, path, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, path, nil
}
