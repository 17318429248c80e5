package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/hlts/internal"
	pkgconfig "github.com/starford/hlts/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := pkgconfig.ExpandHome(cmd.String("config"))

	cfg, err := pkgconfig.LoadOrInit(configPath, internal.NewDefaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithForce(cmd.Bool("force")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func watch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithForce(cmd.Bool("force")),
		internal.WithDebounce(cmd.Duration("debounce")),
	}

	if err := internal.Watch(ctx, opts...); err != nil {
		return fmt.Errorf("app watch error: %w", err)
	}

	return nil
}

func forceFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "force",
		Usage: "Export even while Apple Books is running",
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "hlts",
		Usage: "Export Apple Books highlights and notes to JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: internal.DefaultConfigPath,
				Value:       internal.DefaultConfigPath,
				Sources:     cli.EnvVars("HLTS_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "applebooks",
				Usage:  "Export Apple Books annotations once",
				Flags:  []cli.Flag{forceFlag()},
				Action: export,
			},
			{
				Name:  "watch",
				Usage: "Export, then export again whenever Apple Books annotations change",
				Flags: []cli.Flag{
					forceFlag(),
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period after the last database write",
						Value: 2 * time.Second,
					},
				},
				Action: watch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
