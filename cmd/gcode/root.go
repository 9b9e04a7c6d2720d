package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Galen-Chu/spiritual-g-code/internal/config"
)

// cli holds state shared by every subcommand.
type cli struct {
	cfgFile string
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "gcode",
		Short:         "Natal charts, transits and Daily G-Codes",
		Long:          "gcode computes natal charts and transits and maintains the Daily G-Code stores.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default .gcode.yaml)")
	flags.String("engine", "", "position engine: mock or kepler")
	flags.String("bodies", "", "tracked bodies: classical or extended")
	flags.String("scoring", "", "intensity scheme: weighted or major_minor")

	rootCmd.AddCommand(
		c.natalCmd(),
		c.transitsCmd(),
		c.housesCmd(),
		c.wheelCmd(),
		c.nodesCmd(),
		c.solarSystemCmd(),
		c.dailyCmd(),
		c.cleanupCmd(),
		c.usersCmd(),
		c.migrateCmd(),
	)
	return rootCmd
}

func (c *cli) initConfig(cmd *cobra.Command) error {
	if err := config.Init(c.v, c.cfgFile); err != nil {
		return err
	}
	for _, name := range []string{"engine", "bodies", "scoring"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := c.v.BindPFlag(name, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	return nil
}

func (c *cli) load() (config.Config, error) {
	cfg, err := config.Load(c.v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func logger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "[gcode] ", log.LstdFlags)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
