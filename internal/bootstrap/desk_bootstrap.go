package bootstrap

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"desk_server/adapter/in/worker"
	"desk_server/adapter/out/messaging"
	"desk_server/config"
	"desk_server/pkg/logger"
)

// Worker bundles the job pool and the Redis Stream consumer feeding it.
type Worker struct {
	pool     *worker.Pool
	consumer *messaging.Consumer
	deps     *Dependencies
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	classifyProcessor := worker.NewClassifyProcessor(
		deps.Pipeline,
		deps.Triage,
		deps.MessageRepo,
		zlog,
	)

	handler := worker.NewHandler(classifyProcessor)

	defaultConfig := worker.DefaultPoolConfig()
	poolConfig := &worker.PoolConfig{
		MaxWorkers:       cfg.WorkerMax,
		QueueSize:        cfg.WorkerQueueSize,
		RatePerSecond:    cfg.WorkerRate,
		JobTimeout:       defaultConfig.JobTimeout,
		JobTimeoutByType: defaultConfig.JobTimeoutByType,
		BatchSize:        defaultConfig.BatchSize,
		WorkerChanSize:   defaultConfig.WorkerChanSize,
	}
	if poolConfig.MaxWorkers == 0 {
		poolConfig.MaxWorkers = defaultConfig.MaxWorkers
	}
	if poolConfig.QueueSize == 0 {
		poolConfig.QueueSize = defaultConfig.QueueSize
	}
	if poolConfig.RatePerSecond == 0 {
		poolConfig.RatePerSecond = defaultConfig.RatePerSecond
	}

	pool := worker.NewPool(handler, poolConfig, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:   pool,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		zlog:   zlog,
	}

	if deps.Redis != nil {
		w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
			Group:                "desk-workers",
			Consumer:             cfg.WorkerID,
			Streams:              []string{messaging.StreamClassify},
			Handler:              worker.NewStreamHandler(pool),
			Logger:               zlog,
			MaxRetries:           cfg.ConsumerMaxRetries,
			PendingCheckInterval: cfg.ConsumerPendingCheck(),
			PendingIdleTime:      cfg.ConsumerPendingIdle(),
		})
		logger.Info("Redis Stream consumer configured for %s", messaging.StreamClassify)
	} else {
		logger.Warn("Redis not available, worker will only process direct submissions")
	}

	return w, cleanup, nil
}

// Start runs the pool and the consumer and blocks until Stop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pool.Start()
	}()

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.zlog.Info().Msg("Starting Redis Stream consumer")
			if err := w.consumer.Run(w.ctx); err != nil && err != context.Canceled {
				w.zlog.Error().Err(err).Msg("Redis Stream consumer error")
			}
		}()
	}

	<-w.ctx.Done()
}

// Stop cancels the consumer, drains the pool and waits for goroutines.
func (w *Worker) Stop() {
	w.cancel()
	w.pool.Stop()
	w.wg.Wait()
}

// Submit hands a job directly to the pool, bypassing the stream.
func (w *Worker) Submit(msg *worker.Message) bool {
	return w.pool.Submit(msg)
}

// GetMetrics exposes pool counters for diagnostics.
func (w *Worker) GetMetrics() worker.PoolMetrics {
	return w.pool.GetMetrics()
}
