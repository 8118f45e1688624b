package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pumpops/internal/clock"
	"github.com/smallbiznis/pumpops/internal/config"
	"github.com/smallbiznis/pumpops/internal/migration"
	"github.com/smallbiznis/pumpops/internal/observability"
	"github.com/smallbiznis/pumpops/internal/server"
	"github.com/smallbiznis/pumpops/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const (
	flagHTTPAddr   = "http-addr"
	flagPolicyPath = "policy"
	flagDBType     = "db-type"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pumpops: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pumpops",
		Short:         "Pump scheduling, cost tracking and maintenance alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return exportFlags(cmd)
		},
	}
	root.PersistentFlags().String(flagDBType, "", "database type: postgres, mysql or sqlite")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(
				config.Module,
				observability.Module,
				fx.Provide(RegisterSnowflake),
				db.Module,
				clock.Module,
				migration.Module,
				server.Module,
			).Run()
			return nil
		},
	}
	serve.Flags().String(flagHTTPAddr, "", "HTTP listen address")
	serve.Flags().String(flagPolicyPath, "", "path to the maintenance policy file")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				config.Module,
				observability.Module,
				db.Module,
				migration.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			return app.Stop(ctx)
		},
	}

	root.AddCommand(serve, migrate)
	return root
}

// exportFlags maps explicitly set flags onto the environment read by config.Load.
func exportFlags(cmd *cobra.Command) error {
	envByFlag := map[string]string{
		flagHTTPAddr:   "HTTP_ADDR",
		flagPolicyPath: "PUMPOPS_POLICY_PATH",
		flagDBType:     "DATABASE_TYPE",
	}
	for flag, env := range envByFlag {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := os.Setenv(env, strings.TrimSpace(f.Value.String())); err != nil {
			return err
		}
	}
	return nil
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
