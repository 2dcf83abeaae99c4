package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DigestSender sends one urgent-items digest.
type DigestSender interface {
	SendDigest(ctx context.Context) (string, error)
}

// DigestWorkerConfig holds configuration for the digest worker
type DigestWorkerConfig struct {
	// At is the local send time as HH:MM.
	At          string
	Location    *time.Location
	SendTimeout time.Duration
}

// DigestWorker sends the digest once a day at a fixed local time.
type DigestWorker struct {
	config DigestWorkerConfig
	hour   int
	minute int
	sender DigestSender
	logger *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	sent      int
	failed    int
	lastError error
}

// NewDigestWorker creates a digest worker. It fails when config.At is not a
// valid HH:MM time.
func NewDigestWorker(config DigestWorkerConfig, sender DigestSender, logger *zap.Logger) (*DigestWorker, error) {
	hour, minute, err := ParseClock(config.At)
	if err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = time.Minute
	}
	return &DigestWorker{
		config: config,
		hour:   hour,
		minute: minute,
		sender: sender,
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// ParseClock parses an HH:MM 24-hour time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Name returns the worker name for identification
func (w *DigestWorker) Name() string {
	return "DigestWorker"
}

// Start begins the schedule loop
func (w *DigestWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("digest worker already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("DigestWorker started",
		zap.String("at", w.config.At),
		zap.String("timezone", w.config.Location.String()))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop ends the loop and waits for an in-flight send to finish.
func (w *DigestWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	w.logger.Info("DigestWorker stopped",
		zap.Int("sent_count", w.sent),
		zap.Int("failed_count", w.failed))
	w.mu.Unlock()
	return nil
}

// Stats returns the number of sent and failed digests and the last error.
func (w *DigestWorker) Stats() (sent, failed int, lastErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sent, w.failed, w.lastError
}

func (w *DigestWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		now := w.now()
		next := NextRun(now, w.hour, w.minute, w.config.Location)
		w.logger.Debug("Next digest scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return
		case <-w.after(next.Sub(now)):
			w.send(ctx)
		}
	}
}

func (w *DigestWorker) send(ctx context.Context) {
	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	_, err := w.sender.SendDigest(sendCtx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.failed++
		w.lastError = err
		w.logger.Error("Scheduled digest failed", zap.Error(err))
		return
	}
	w.sent++
}

// NextRun returns the first hour:minute in loc strictly after now.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
