package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/hockey-projections/internal/app"
	"github.com/riskibarqy/hockey-projections/internal/config"
	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
	"github.com/riskibarqy/hockey-projections/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).Named("projector")
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, application, strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:])
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func run(ctx context.Context, a *app.App, cmd string, args []string) (any, error) {
	switch cmd {
	case "daily":
		day, err := optionalDay(a, args)
		if err != nil {
			return nil, err
		}
		return a.Daily.Run(ctx, day)
	case "rebuild":
		start, end, err := dayRange(args)
		if err != nil {
			return nil, err
		}
		return a.Daily.Rebuild(ctx, start, end)
	case "stats":
		start, end, err := dayRange(args)
		if err != nil {
			return nil, err
		}
		report, err := a.Stats.WriteRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if _, err := a.Stats.WriteCombined(ctx, time.Time{}); err != nil {
			return nil, err
		}
		return report, nil
	case "features":
		start, end, err := dayRange(args)
		if err != nil {
			return nil, err
		}
		report, err := a.Features.WriteRange(ctx, start, end, true)
		if err != nil {
			return nil, err
		}
		if _, err := a.Features.WriteCombined(ctx, end); err != nil {
			return nil, err
		}
		return report, nil
	case "project":
		day, err := optionalDay(a, args)
		if err != nil {
			return nil, err
		}
		result, err := a.Projections.Export(ctx, day)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"date":    daykey.ISO(day),
			"rows":    len(result.Rows),
			"forward": result.Forward,
			"defense": result.Defense,
		}, nil
	default:
		printUsage()
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func optionalDay(a *app.App, args []string) (time.Time, error) {
	if len(args) == 0 {
		return daykey.Truncate(time.Now().In(a.Location())), nil
	}
	return daykey.Parse(args[0])
}

func dayRange(args []string) (time.Time, time.Time, error) {
	if len(args) < 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("start and end dates are required")
	}
	start, err := daykey.Parse(args[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := daykey.Parse(args[1])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  go run ./cmd/projector <command> [args]

Commands:
  daily [YYYY-MM-DD]       run the full daily pipeline (default: today)
  rebuild <start> <end>    rebuild stats and training features for a range
  stats <start> <end>      write per-day stats and the combined stats file
  features <start> <end>   write training features and the combined training file
  project [YYYY-MM-DD]     fit the models and export projections for a day`)
}
