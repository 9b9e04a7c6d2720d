package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Galen-Chu/spiritual-g-code/internal/app"
	"github.com/Galen-Chu/spiritual-g-code/internal/config"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// withService opens the configured stores, builds the service and runs fn.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, svc *gcode.Service, stores *storage.Stores) error) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	stores, cleanup, err := app.OpenStores(ctx, cfg.Storage, logger(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := app.NewService(cfg, stores, logger(cmd))
	if err != nil {
		return err
	}
	return fn(ctx, cfg, svc, stores)
}

func (c *cli) dailyCmd() *cobra.Command {
	var date, username string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Compute Daily G-Codes for every enabled user, or one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, _ config.Config, svc *gcode.Service, stores *storage.Stores) error {
				at := svc.Today()
				if date != "" {
					d, err := parseDate(date)
					if err != nil {
						return err
					}
					at = d
				}

				if username != "" {
					u, err := stores.Users.GetByUsername(ctx, username)
					if err != nil {
						return fmt.Errorf("user %s: %w", username, err)
					}
					g, err := svc.DailyGCode(ctx, u.ID, at)
					if err != nil {
						return err
					}
					printDaily(cmd, u.Username, g)
					return nil
				}

				res, err := svc.BatchDaily(ctx, at)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d processed, %d failed\n", res.Date.Format(time.DateOnly), res.Processed, res.Failed)
				names := make([]string, 0, len(res.Errors))
				for name := range res.Errors {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s: %v\n", name, res.Errors[name])
				}
				if res.Failed > 0 {
					return fmt.Errorf("%d users failed", res.Failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "transit date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&username, "user", "", "compute only this username")
	return cmd
}

func printDaily(cmd *cobra.Command, username string, g *domain.DailyGCode) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: score %d (%s)\n", username, g.TransitDate.Format(time.DateOnly), g.Score, g.Level)
	if g.Interpretation.Affirmation != "" {
		fmt.Fprintf(out, "  %s\n", g.Interpretation.Affirmation)
	}
}

func (c *cli) cleanupCmd() *cobra.Command {
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove Daily G-Codes older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, cfg config.Config, svc *gcode.Service, _ *storage.Stores) error {
				days := cfg.Jobs.RetentionDays
				if cmd.Flags().Changed("retention-days") {
					days = retentionDays
				}
				n, err := svc.Cleanup(ctx, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d readings older than %d days\n", n, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override jobs.retention_days")
	return cmd
}

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var b birthFlags
	var tone, email string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user and compute the natal chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			birth, err := b.birth()
			if err != nil {
				return err
			}
			return c.withService(cmd, func(ctx context.Context, _ config.Config, svc *gcode.Service, _ *storage.Stores) error {
				u := domain.NewUser(args[0], birth.Date, birth.Time, birth.Location, birth.Timezone)
				u.Email = email
				if tone != "" {
					u.PreferredTone = domain.Tone(tone)
				}
				if err := svc.CreateUser(ctx, u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", u.ID, u.Username)
				return nil
			})
		},
	}
	b.register(add)
	add.Flags().StringVar(&tone, "tone", "", "interpretation tone: inspiring, practical, poetic or technical")
	add.Flags().StringVar(&email, "email", "", "email address")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, _ config.Config, svc *gcode.Service, _ *storage.Stores) error {
				users, err := svc.ListUsers(ctx)
				if err != nil {
					return err
				}
				for _, u := range users {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", u.ID, u.Username, u.BirthDate.Format(time.DateOnly), u.PreferredTone)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			if cfg.Storage.UseMemory {
				return fmt.Errorf("nothing to migrate: storage.use_memory is set")
			}
			cfg.Storage.Migrate = true
			_, cleanup, err := app.OpenStores(cmd.Context(), cfg.Storage, logger(cmd))
			if err != nil {
				return err
			}
			cleanup()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
