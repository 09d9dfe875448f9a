package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mealstack/internal/config"
	"github.com/mealstack/internal/constants"
	"github.com/mealstack/internal/logger"
	"github.com/mealstack/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	cartCleanupInterval = time.Hour
)

// Service asynchronous queue service.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the queue server until shutdown.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.CartService != nil {
		go s.runCartCleanupLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the queue server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runCartCleanupLoop periodically drops cart lines whose delivery day
// has already passed, independent of enqueued cleanup tasks.
func (s *Service) runCartCleanupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.Container == nil || s.consumer.CartService == nil {
		return
	}
	runOnce := func() {
		today := time.Now().Format(constants.DateLayout)
		removed, err := s.consumer.CartService.CleanupExpired(today)
		if err != nil {
			logger.Warnw("worker_cart_cleanup_loop_failed", "before", today, "error", err)
			return
		}
		if removed > 0 {
			logger.Infow("worker_cart_cleanup_loop_done", "before", today, "removed", removed)
		}
	}
	runOnce()

	ticker := time.NewTicker(cartCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
