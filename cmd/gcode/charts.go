package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
)

// birthFlags are the birth data inputs shared by chart commands.
type birthFlags struct {
	date     string
	time     string
	location string
	timezone string
}

func (b *birthFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.date, "date", "", "birth date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&b.time, "time", "", "birth time, HH:MM (optional)")
	cmd.Flags().StringVar(&b.location, "location", "", "birth location")
	cmd.Flags().StringVar(&b.timezone, "timezone", "", "IANA timezone (default UTC)")
	_ = cmd.MarkFlagRequired("date")
}

func (b *birthFlags) birth() (astro.BirthData, error) {
	date, err := parseDate(b.date)
	if err != nil {
		return astro.BirthData{}, err
	}
	return astro.BirthData{Date: date, Time: b.time, Location: b.location, Timezone: b.timezone}, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// dateOrToday parses s, or returns today's UTC date when s is empty.
func dateOrToday(s string) (time.Time, error) {
	if s == "" {
		return astro.CivilDate(time.Now()), nil
	}
	return parseDate(s)
}

func (c *cli) calculator() (*astro.Calculator, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	return cfg.Calculator()
}

// birthCmd builds a command that computes one value from birth data.
func (c *cli) birthCmd(use, short string, compute func(*astro.Calculator, astro.BirthData) (any, error)) *cobra.Command {
	var b birthFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			birth, err := b.birth()
			if err != nil {
				return err
			}
			calc, err := c.calculator()
			if err != nil {
				return err
			}
			out, err := compute(calc, birth)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	b.register(cmd)
	return cmd
}

func (c *cli) natalCmd() *cobra.Command {
	return c.birthCmd("natal", "Compute a natal chart", func(calc *astro.Calculator, b astro.BirthData) (any, error) {
		return calc.NatalChart(b)
	})
}

func (c *cli) housesCmd() *cobra.Command {
	return c.birthCmd("houses", "Compute Placidus house cusps", func(calc *astro.Calculator, b astro.BirthData) (any, error) {
		return calc.PlacidusHouses(b)
	})
}

func (c *cli) wheelCmd() *cobra.Command {
	return c.birthCmd("wheel", "Compute chart wheel data", func(calc *astro.Calculator, b astro.BirthData) (any, error) {
		return calc.NatalWheel(b)
	})
}

// transitResult adds the intensity to a transit calculation.
type transitResult struct {
	*astro.TransitResult
	Intensity int `json:"intensity"`
}

func (c *cli) transitsCmd() *cobra.Command {
	var target string
	cmd := c.birthCmd("transits", "Compute transits to a natal chart", func(calc *astro.Calculator, b astro.BirthData) (any, error) {
		at, err := dateOrToday(target)
		if err != nil {
			return nil, err
		}
		res, err := calc.Transits(b, at)
		if err != nil {
			return nil, err
		}
		return transitResult{TransitResult: res, Intensity: calc.Intensity(res.Planets, res.Aspects)}, nil
	})
	cmd.Flags().StringVar(&target, "target", "", "transit date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) nodesCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Compute the mean lunar nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := dateOrToday(date)
			if err != nil {
				return err
			}
			calc, err := c.calculator()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), calc.LunarNodes(at))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) solarSystemCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "solar-system",
		Short: "Place every body around the Sun",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := dateOrToday(date)
			if err != nil {
				return err
			}
			calc, err := c.calculator()
			if err != nil {
				return err
			}
			system, err := calc.SolarSystemTransits(at)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), system)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	return cmd
}
