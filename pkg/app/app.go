// Package app builds the escrow components from configuration. The API
// server and both lambdas share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/marketplace-escrow/pkg/config"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/gateway"
	"github.com/chris/marketplace-escrow/pkg/gateway/sandbox"
	"github.com/chris/marketplace-escrow/pkg/gateway/stripe"
	"github.com/chris/marketplace-escrow/pkg/notify"
	"github.com/chris/marketplace-escrow/pkg/reconciler"
	"github.com/chris/marketplace-escrow/pkg/risk"
	"github.com/chris/marketplace-escrow/pkg/scheduler"
	"github.com/chris/marketplace-escrow/pkg/storage"
	dydbstore "github.com/chris/marketplace-escrow/pkg/storage/dynamodb"
	"github.com/chris/marketplace-escrow/pkg/storage/memory"
	"github.com/chris/marketplace-escrow/pkg/sweeper"
	"github.com/redis/go-redis/v9"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      storage.Storage
	Escrow     *escrow.Orchestrator
	Reconciler *reconciler.Reconciler
	Sweeper    *sweeper.Sweeper

	redis      *redis.Client
	dispatcher *notify.Dispatcher
	closers    []func() error
}

// Build wires every component cfg asks for.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	needAWS := cfg.Store == config.StoreDynamoDB || cfg.NotifySQSQueueURL != ""
	var sqsClient *sqs.Client
	if needAWS {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		if cfg.Store == config.StoreDynamoDB {
			a.Store = dydbstore.New(dynamodb.NewFromConfig(awsCfg), cfg.TransactionsTable, cfg.EventsTable, cfg.DisputesTable)
		}
		if cfg.NotifySQSQueueURL != "" {
			sqsClient = sqs.NewFromConfig(awsCfg)
		}
	}
	if a.Store == nil {
		logger.Warn("using the in-memory store; data is lost on restart")
		a.Store = memory.New()
	}

	if cfg.RedisURL != "" {
		client, err := risk.Connect(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		a.closers = append(a.closers, client.Close)
	}

	gw, verifier := newGateway(cfg)

	sinks := notify.Multi{&notify.LogNotifier{Logger: logger}}
	if sqsClient != nil {
		sinks = append(sinks, notify.NewSQSNotifier(sqsClient, cfg.NotifySQSQueueURL))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, kafkaNotifier)
		a.closers = append(a.closers, kafkaNotifier.Close)
	}
	a.dispatcher = notify.NewDispatcher(sinks, cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout, logger)

	escrowCfg := escrow.DefaultConfig()
	escrowCfg.InstanceID = cfg.InstanceID
	escrowCfg.GatewayTimeout = cfg.GatewayTimeout
	escrowCfg.GatewayMaxAttempts = cfg.GatewayMaxAttempts
	escrowCfg.LeaseTTL = cfg.LeaseTTL
	escrowCfg.PlatformFeeBPS = cfg.PlatformFeeBPS

	opts := []escrow.Option{
		escrow.WithLogger(logger),
		escrow.WithNotifier(a.dispatcher),
		escrow.WithScreener(a.screener()),
	}
	a.Escrow = escrow.New(a.Store, gw, escrowCfg, opts...)
	a.Reconciler = reconciler.New(verifier, a.Store, a.Escrow, logger)
	a.Sweeper = sweeper.New(a.Escrow, a.Store, sweeper.Config{
		StaleAuthorizationAfter: cfg.StaleAuthorizationAfter,
		DeliveryWindow:          cfg.DeliveryWindow,
		ReminderLead:            cfg.ReminderLead,
	}, logger)
	return a, nil
}

func newGateway(cfg *config.Config) (gateway.Gateway, reconciler.Verifier) {
	if cfg.Gateway == config.GatewaySandbox {
		return sandbox.New(), sandbox.NewVerifier(cfg.StripeWebhookSecret)
	}
	adapter := stripe.New(stripe.Options{SecretKey: cfg.StripeSecretKey, BaseURL: cfg.StripeAPIBase})
	return adapter, stripe.NewVerifier(cfg.StripeWebhookSecret)
}

func (a *App) screener() risk.Screener {
	if a.redis != nil {
		return risk.NewRedis(a.redis, a.Config.RequireVerifiedSellers, a.Config.RiskReviewAbove)
	}
	return &risk.Static{ReviewAbove: a.Config.RiskReviewAbove}
}

// Scheduler returns a runner with every sweep the schedule enables. With
// Redis configured, instances share a lock so each sweep runs once per tick.
func (a *App) Scheduler(schedule config.Schedule) (*scheduler.Runner, error) {
	var locker scheduler.Locker
	if a.redis != nil {
		locker = scheduler.NewRedisLocker(a.redis)
	}
	runner := scheduler.NewRunner(a.Logger, locker)
	for _, name := range sweeper.Jobs {
		js, ok := schedule.Jobs[name]
		if !ok || js.Disabled {
			a.Logger.Info("sweep disabled", "job", name)
			continue
		}
		if err := runner.Add(a.Sweeper.Job(name, js.Interval, js.Jitter)); err != nil {
			return nil, err
		}
	}
	return runner, nil
}

// Close drains queued notifications and closes connections.
func (a *App) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.dispatcher.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.Logger.Warn("notification queue not drained before shutdown")
	}

	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
