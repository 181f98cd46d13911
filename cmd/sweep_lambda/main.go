package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/marketplace-escrow/pkg/app"
	"github.com/chris/marketplace-escrow/pkg/config"
	"github.com/chris/marketplace-escrow/pkg/sweeper"
)

var sweeps *sweeper.Sweeper

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	sweeps = a.Sweeper
}

// SweepRequest is the EventBridge schedule input. An empty Job runs every sweep.
type SweepRequest struct {
	Job string `json:"job"`
}

// HandleRequest is triggered by an EventBridge Schedule.
func HandleRequest(ctx context.Context, req SweepRequest) ([]sweeper.Report, error) {
	jobs := sweeper.Jobs
	if req.Job != "" {
		if !slices.Contains(sweeper.Jobs, req.Job) {
			return nil, fmt.Errorf("unknown sweep %q", req.Job)
		}
		jobs = []string{req.Job}
	}

	var reports []sweeper.Report
	var errs []error
	for _, job := range jobs {
		report, err := sweeps.Run(ctx, job)
		if err != nil {
			// One sweep failing to list candidates must not block the others.
			errs = append(errs, fmt.Errorf("%s: %w", job, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

func main() {
	lambda.Start(HandleRequest)
}
