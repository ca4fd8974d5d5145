package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/flavourheaven/costonomy/internal/config"
	"github.com/flavourheaven/costonomy/internal/costonomy"
	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/session"
)

type app struct {
	out        io.Writer
	loadConfig func() (config.Config, error)
	newCatalog func(config.Config) (session.Catalog, error)

	// flag overrides
	apiURL   string
	outletID int64
	userID   int64
	logLevel string

	svc *session.Service
}

func newApp(out io.Writer) *app {
	return &app{
		out:        out,
		loadConfig: config.Load,
		newCatalog: func(cfg config.Config) (session.Catalog, error) {
			return costonomy.New(cfg.API.BaseURL,
				costonomy.Operator{OutletID: cfg.API.OutletID, UserID: cfg.API.UserID},
				costonomy.WithTimeout(cfg.API.Timeout),
			)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "costonomyctl",
		Short:         "Scale base item and recipe ingredient lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "Costonomy API base URL (default from COSTONOMY_API_URL)")
	flags.Int64Var(&a.outletID, "outlet", 0, "outlet ID (default from COSTONOMY_OUTLET_ID)")
	flags.Int64Var(&a.userID, "user", 0, "user ID (default from COSTONOMY_USER_ID)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newPrepareCmd(a),
		newCloneCmd(a),
		newSetQuantityCmd(a),
		newBreakdownCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = a.apiURL
	}
	if flags.Changed("outlet") {
		cfg.API.OutletID = a.outletID
	}
	if flags.Changed("user") {
		cfg.API.UserID = a.userID
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	catalog, err := a.newCatalog(cfg)
	if err != nil {
		return err
	}
	if catalog == nil {
		return errors.New("no catalog configured")
	}
	a.svc = session.NewService(session.NewMemoryStore(), catalog, session.WithLocation(cfg.Location()))
	return nil
}
