// Package app assembles the components shared by the api and worker processes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"conreach/config"
	"conreach/internal/adapters/email"
	"conreach/internal/adapters/sms"
	"conreach/internal/domain"
	"conreach/internal/jobs"
	"conreach/internal/metrics"
	"conreach/internal/repository/postgres"
	"conreach/internal/services"
)

// NewRegistry returns a registry with the Go runtime and process collectors plus the app metrics.
func NewRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.New(reg)
}

// Queue is the delivery queue selected by QUEUE_BACKEND together with its lock.
type Queue struct {
	jobs.Queue
	Locker jobs.Locker
	// LockTTL is how long a task lock lives without a refresh. Zero for local locks.
	LockTTL time.Duration
	close   func() error
}

// Durable reports whether queued tasks survive a restart.
func (q *Queue) Durable() bool {
	d, ok := q.Queue.(interface{ Durable() bool })
	return ok && d.Durable()
}

// Close releases the queue's connections.
func (q *Queue) Close() error {
	if q.close == nil {
		return nil
	}
	return q.close()
}

// NewQueue builds the memory or redis queue.
func NewQueue(ctx context.Context, cfg config.QueueConfig) (*Queue, error) {
	switch cfg.Backend {
	case "memory":
		mq := jobs.NewMemoryQueue(cfg.Size)
		return &Queue{Queue: mq, Locker: jobs.NewLocalLocker(), close: func() error {
			mq.Close()
			return nil
		}}, nil
	case "redis":
		client, err := jobs.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return newRedisQueue(client, cfg)
	}
	return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
}

func newRedisQueue(client *redis.Client, cfg config.QueueConfig) (*Queue, error) {
	rq, err := jobs.NewRedisQueue(client, cfg.Key)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	locker, err := jobs.NewRedisLocker(client, "", cfg.LockTTL)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Queue{Queue: rq, Locker: locker, LockTTL: ttl, close: client.Close}, nil
}

// NewProviders builds the messaging provider for each channel that needs one.
func NewProviders(cfg *config.Config, logger *slog.Logger) (map[domain.Channel]domain.MessagingProvider, error) {
	smsProvider, err := sms.NewProvider(sms.Config{
		Provider:   cfg.SMS.Provider,
		AccountSID: cfg.SMS.TwilioAccountSID,
		AuthToken:  cfg.SMS.TwilioAuthToken,
		From:       cfg.SMS.TwilioFrom,
		BaseURL:    cfg.SMS.TwilioBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("sms provider: %w", err)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	return map[domain.Channel]domain.MessagingProvider{
		domain.ChannelSMS:   smsProvider,
		domain.ChannelEmail: email.NewProvider(mailer, renderer, cfg.Broadcast.EmailSubject),
	}, nil
}

// NewDeliveryRunner wires the delivery worker behind a job runner consuming q.
func NewDeliveryRunner(db *sql.DB, q *Queue, providers map[domain.Channel]domain.MessagingProvider, cfg config.DeliveryConfig, m *metrics.Metrics, logger *slog.Logger) *jobs.Runner {
	worker := services.NewDeliveryWorker(
		postgres.NewBroadcastRepository(db),
		providers,
		services.DeliveryConfig{MinInterval: cfg.MinInterval, SendTimeout: cfg.SendTimeout},
		m,
		logger,
	)
	return jobs.NewRunner(q, services.NewDeliveryHandler(worker), q.Locker, jobs.RunnerConfig{
		Workers: cfg.Workers,
		Retry: jobs.RetryPolicy{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
		},
		OnExhausted: services.NewExhaustedHook(worker),
		LockRefresh: q.LockTTL / 3,
		Logger:      logger,
	})
}
