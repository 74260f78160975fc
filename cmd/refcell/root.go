package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kolkov/refcell/refcell"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "refcell",
		Short:         "Demonstrates runtime-checked borrowing",
		Version:       refcell.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./refcell.yaml)")
	pf.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.Bool("track-sites", false, "record borrow call sites for conflict reports")
	_ = a.v.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(cfgKeyTrackSites, pf.Lookup("track-sites"))

	root.AddCommand(newDemoCmd(a))
	root.AddCommand(newStatesCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// cellOptions returns the refcell options implied by the configuration.
func (a *app) cellOptions(name string) []refcell.Option {
	return []refcell.Option{
		refcell.WithName(name),
		refcell.WithLogger(a.log),
		refcell.WithSiteTracking(a.cfg.TrackSites),
	}
}
