package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/churnsight/internal/ingest"
	"github.com/angelmondragon/churnsight/internal/pipeline"
	"github.com/angelmondragon/churnsight/internal/repair"
	"github.com/angelmondragon/churnsight/pkg/config"
	"github.com/angelmondragon/churnsight/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "churn-pipeline"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "churn-pipeline",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	txns, err := loadTransactions(ctx, logg, cfg.Source)
	requireResource(ctx, logg, "transaction source", err)

	result, err := pipeline.Run(ctx, logg, txns, cfg.Pipeline)
	if err != nil {
		logg.Error(ctx, "pipeline run failed", err)
		os.Exit(1)
	}

	runCtx := logg.WithRunID(ctx, result.RunID)

	if err := ingest.WriteFrame(cfg.Output.ScoresPath, result.ToFrame()); err != nil {
		logg.Error(runCtx, "writing customer scores", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(runCtx, "path", cfg.Output.ScoresPath), "customer scores written")

	if cfg.Output.RepairedPath != "" {
		if err := ingest.WriteFrame(cfg.Output.RepairedPath, repair.ToFrame(result.Repaired)); err != nil {
			logg.Error(runCtx, "writing repaired transactions", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(runCtx, "path", cfg.Output.RepairedPath), "repaired transactions written")
	}

	if cfg.Output.PrintReport {
		printDiagnostics(result)
	}
}

func loadTransactions(ctx context.Context, logg *logger.Logger, src config.SourceConfig) ([]ingest.Transaction, error) {
	switch src.Kind {
	case config.SourceKindSQL:
		return ingest.NewSQLSource(src.DSN, src.Table, logg).Load(ctx)
	default:
		return ingest.NewCSVSource(src.CSVPath, src.DropColumns...).Load(ctx)
	}
}

func printDiagnostics(result *pipeline.Result) {
	fmt.Println(result.Eval.Report())
	fmt.Printf("cross-validation scores: %v\n", result.CVScores)
	fmt.Printf("cross-validation mean accuracy: %.4f\n", result.CVMean)

	tiers := result.AtRiskTiers()
	if len(tiers) == 0 {
		return
	}
	fmt.Printf("\nat-risk tiers for %d churned customers:\n", len(tiers))
	for _, c := range result.Customers {
		if tier, ok := tiers[c.CustomerID]; ok {
			fmt.Printf("%-20s %s\n", c.CustomerID, tier)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
