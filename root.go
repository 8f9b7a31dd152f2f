package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"where2eat/api/geoip"
	"where2eat/api/google"
	"where2eat/api/yelp"
	"where2eat/config"
	"where2eat/models"
	"where2eat/orchestrator"
	"where2eat/prompt"
	"where2eat/utils"
)

var version = "dev"

// app carries what every command needs once flags and config are loaded.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	in     io.Reader
	out    io.Writer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "where2eat",
		Short: "Decide where to eat using Yelp and Google Maps",
		Long: `where2eat searches Yelp for restaurants near you, ranks them by the
criterion you choose, shows recent reviews and gives directions to the
one you pick.

Run without a subcommand for the interactive helper.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.runInteractive,
	}

	configPath := cmd.PersistentFlags().String("config", "", "Path to a where2eat.yaml config file")
	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return &ConfigError{Err: err}
		}
		if *debugLogging {
			cfg.Logging.Level = "debug"
		}
		a.cfg = cfg
		a.logger = utils.NewLoggerWithLevel(cfg.Logging.Level, cfg.Logging.Format)
		a.in = cmd.InOrStdin()
		a.out = cmd.OutOrStdout()
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.logger != nil {
			a.logger.Sync()
		}
	}

	cmd.AddCommand(newSearchCommand(a))
	cmd.AddCommand(newLookupCommand(a))
	cmd.AddCommand(newReviewsCommand(a))
	cmd.AddCommand(newDirectionsCommand(a))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

// yelpClient returns a Yelp client, asking for the key on a terminal when
// none is configured.
func (a *app) yelpClient(ctx context.Context) (*yelp.Client, error) {
	if err := a.ensureKey(ctx, &a.cfg.Yelp.APIKey, "Yelp", a.cfg.RequireYelp); err != nil {
		return nil, err
	}
	return yelp.New(a.cfg, a.logger), nil
}

func (a *app) googleClient(ctx context.Context) (*google.Client, error) {
	if err := a.ensureKey(ctx, &a.cfg.Google.APIKey, "Google", a.cfg.RequireGoogle); err != nil {
		return nil, err
	}
	return google.New(a.cfg, a.logger), nil
}

func (a *app) ensureKey(ctx context.Context, key *string, service string, require func() error) error {
	err := require()
	if err == nil {
		return nil
	}
	if !prompt.IsTerminal(a.in) {
		return &ConfigError{Err: err}
	}
	entered, perr := prompt.New(a.in, a.out).APIKey(ctx, service)
	if perr != nil {
		return &ConfigError{Err: errors.Join(err, perr)}
	}
	*key = entered
	return nil
}

func (a *app) defaultPreferences() models.Preferences {
	return models.Preferences{
		Origin:      models.Origin{Address: a.cfg.Yelp.DefaultLocation},
		Term:        a.cfg.Yelp.DefaultTerm,
		Radius:      a.cfg.Yelp.Radius,
		Criterion:   models.ByRating,
		ResultCount: 5,
	}
}

func (a *app) runInteractive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	yc, err := a.yelpClient(ctx)
	if err != nil {
		return err
	}

	deps := orchestrator.Deps{
		Searcher:    yc,
		Reviews:     yc,
		Prompter:    prompt.New(a.in, a.out),
		Out:         a.out,
		Logger:      a.logger,
		Defaults:    a.defaultPreferences(),
		SearchLimit: a.cfg.Yelp.SearchLimit,
	}

	// directions are optional; the session ends after the pick without them
	if gc, err := a.googleClient(ctx); err != nil {
		a.logger.Warn("directions disabled: %v", err)
	} else {
		deps.Navigator = gc
	}
	if a.cfg.GeoIP.Enabled {
		deps.Locator = geoip.New(a.cfg, a.logger)
	}

	session := orchestrator.NewSession(deps)
	a.logger.Debug("starting session %s", session.ID)

	if _, err := session.Run(ctx); err != nil {
		return fmt.Errorf("session %s: %w", session.ID, err)
	}
	return nil
}
