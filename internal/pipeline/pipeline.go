package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/angelmondragon/churnsight/internal/churn"
	"github.com/angelmondragon/churnsight/internal/cluster"
	"github.com/angelmondragon/churnsight/internal/features"
	"github.com/angelmondragon/churnsight/internal/frame"
	"github.com/angelmondragon/churnsight/internal/ingest"
	"github.com/angelmondragon/churnsight/internal/priority"
	"github.com/angelmondragon/churnsight/internal/repair"
	"github.com/angelmondragon/churnsight/internal/rfm"
	"github.com/angelmondragon/churnsight/pkg/config"
	"github.com/angelmondragon/churnsight/pkg/enums"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/angelmondragon/churnsight/pkg/logger"
	"github.com/google/uuid"
)

// Scored is one customer row of the pipeline output table.
type Scored struct {
	rfm.Customer
	Cluster          int
	Segment          enums.Segment
	Churned          bool
	ChurnProbability float64
	Priority         enums.RetentionTier
}

// Result bundles the scored customer table with the run's diagnostics.
type Result struct {
	RunID         string
	ReferenceDate time.Time
	Customers     []Scored
	Repaired      []repair.Repaired
	Scaler        *features.Scaler
	Eval          churn.Evaluation
	CVScores      []float64
	CVMean        float64
}

// Run executes the batch end to end: repair, RFM aggregation, scaling,
// segmentation, churn labeling, churn prediction, and retention tiering.
// Each stage takes sole ownership of its input and returns a new table; a
// failing stage aborts the run with its name on the error.
func Run(ctx context.Context, logg *logger.Logger, txns []ingest.Transaction, cfg config.PipelineConfig) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	ctx = logg.WithRunID(ctx, result.RunID)
	logg.Info(logg.WithField(ctx, "transactions", len(txns)), "pipeline run starting")

	repaired, err := runStage(ctx, logg, "repair", func() ([]repair.Repaired, error) {
		return repair.Run(txns)
	})
	if err != nil {
		return nil, err
	}
	result.Repaired = repaired

	type rfmOut struct {
		customers []rfm.Customer
		reference time.Time
	}
	aggregated, err := runStage(ctx, logg, "rfm", func() (rfmOut, error) {
		customers, reference, err := rfm.Aggregate(repaired)
		return rfmOut{customers, reference}, err
	})
	if err != nil {
		return nil, err
	}
	customers := aggregated.customers
	result.ReferenceDate = aggregated.reference

	logX := features.LogFeatures(customers)
	scaled, err := runStage(ctx, logg, "scale", func() ([][]float64, error) {
		scaledX, scaler, err := features.FitTransform(logX)
		result.Scaler = scaler
		return scaledX, err
	})
	if err != nil {
		return nil, err
	}

	model, err := runStage(ctx, logg, "cluster", func() (*cluster.Model, error) {
		return cluster.Fit(scaled, cfg.Clusters, cfg.Seed)
	})
	if err != nil {
		return nil, err
	}
	segments := model.Names(customers)

	labels := churn.Label(customers, cfg.ChurnThresholdDays)

	prediction, err := runStage(ctx, logg, "predict", func() (*churn.Prediction, error) {
		return churn.Predict(logX, labels, churn.Config{
			Trees:        cfg.Trees,
			MaxDepth:     cfg.MaxDepth,
			MinLeaf:      cfg.MinLeaf,
			TestFraction: cfg.TestFraction,
			Seed:         cfg.Seed,
			Folds:        cfg.CVFolds,
		})
	})
	if err != nil {
		return nil, err
	}
	result.Eval = prediction.Eval
	result.CVScores = prediction.CVScores
	result.CVMean = prediction.CVMean

	thresholds := priority.BatchThresholds(customers)
	result.Customers = make([]Scored, len(customers))
	for i, c := range customers {
		result.Customers[i] = Scored{
			Customer:         c,
			Cluster:          model.Assignments[i],
			Segment:          segments[model.Assignments[i]],
			Churned:          labels[i],
			ChurnProbability: prediction.Probabilities[i],
			Priority:         priority.Retention(c, prediction.Probabilities[i], thresholds),
		}
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"customers": len(result.Customers),
		"cv_mean":   result.CVMean,
	}), "pipeline run finished")
	return result, nil
}

func runStage[T any](ctx context.Context, logg *logger.Logger, stage string, fn func() (T, error)) (T, error) {
	stageCtx := logg.WithStage(ctx, stage)
	started := time.Now()
	out, err := fn()
	if err != nil {
		staged := pkgerrors.StageWrap(stage, err)
		logg.Error(stageCtx, "stage failed", staged)
		var zero T
		return zero, staged
	}
	logg.Debug(logg.WithField(stageCtx, "elapsed", time.Since(started).String()), "stage complete")
	return out, nil
}

// AtRiskTiers applies the absolute-threshold at-risk policy to the churned
// customers of the run. It is a separate policy from the retention tier on
// each Scored row, invoked independently.
func (r *Result) AtRiskTiers() map[string]enums.AtRiskTier {
	tiers := make(map[string]enums.AtRiskTier)
	for _, c := range r.Customers {
		if c.Churned {
			tiers[c.CustomerID] = priority.AtRisk(c.Customer)
		}
	}
	return tiers
}

var outputColumns = []string{
	"customer_id", "recency", "frequency", "monetary",
	"cluster", "segment", "churned", "churn_probability", "priority_segment",
}

// ToFrame renders the scored table in the output column contract.
func (r *Result) ToFrame() *frame.Frame {
	rows := make([][]string, len(r.Customers))
	for i, c := range r.Customers {
		churned := "0"
		if c.Churned {
			churned = "1"
		}
		rows[i] = []string{
			c.CustomerID,
			strconv.Itoa(c.RecencyDays),
			strconv.Itoa(c.Frequency),
			strconv.FormatFloat(c.Monetary, 'f', 2, 64),
			strconv.Itoa(c.Cluster),
			c.Segment.String(),
			churned,
			strconv.FormatFloat(c.ChurnProbability, 'f', 6, 64),
			c.Priority.String(),
		}
	}
	return &frame.Frame{Columns: outputColumns, Rows: rows}
}
