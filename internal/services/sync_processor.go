package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"hamanets/internal/amqp"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/log"
	"hamanets/internal/period"
	"hamanets/internal/sheets"
	"hamanets/internal/stats"
	"hamanets/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often a full mirror runs without any event (default: 5m)
	PollInterval time.Duration

	// MaxRetries is the number of write attempts per sync (default: 3)
	MaxRetries int

	// RetryDelay is the wait before the first retry; it doubles per attempt (default: 1s)
	RetryDelay time.Duration

	// Labels are the transaction tab headers
	Labels export.Labels
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 5 * time.Minute,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		Labels:       export.EnglishLabels,
	}
}

// SyncProcessor mirrors the stored ledger to a spreadsheet. It reloads
// the repository on every run, so it works from a separate process, and
// skips the write when the stored document has not changed.
type SyncProcessor struct {
	repo   storage.Repository
	mirror sheets.Mirror
	config SyncProcessorConfig
	clock  period.Clock
	logger *log.Logger

	syncMu     sync.Mutex
	lastDigest [sha256.Size]byte
	synced     bool

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(repo storage.Repository, mirror sheets.Mirror, config SyncProcessorConfig, logger *log.Logger) *SyncProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if config.Labels.Header[0] == "" {
		config.Labels = export.EnglishLabels
	}
	return &SyncProcessor{
		repo:   repo,
		mirror: mirror,
		config: config,
		clock:  period.SystemClock,
		logger: logger.WithComponent(log.ComponentSheets),
	}
}

// Start begins the periodic mirror loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.syncLogged(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.syncLogged(ctx)
		}
	}
}

func (p *SyncProcessor) syncLogged(ctx context.Context) {
	if _, err := p.SyncNow(ctx); err != nil && ctx.Err() == nil {
		log.LogError(ctx, p.logger, "Periodic sheets sync failed", err, log.OpSync, nil)
	}
}

// HandleLedgerChange is an AMQP consumer handler: any change triggers a
// full mirror.
func (p *SyncProcessor) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	p.logger.DebugContext(ctx, "Ledger change received",
		log.FieldEntity, msg.Entity,
		log.FieldOperation, msg.Operation,
		log.FieldRevision, msg.Revision)
	_, err := p.SyncNow(ctx)
	return err
}

// SyncNow mirrors the stored ledger. synced is false when the stored
// document matches the last mirrored one.
func (p *SyncProcessor) SyncNow(ctx context.Context) (synced bool, err error) {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()

	state, err := p.repo.Load(ctx)
	if errors.Is(err, core.ErrNoState) {
		state, err = core.State{}, nil
	}
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}

	encoded, err := core.EncodeState(state)
	if err != nil {
		return false, fmt.Errorf("encode ledger: %w", err)
	}
	digest := sha256.Sum256(encoded)
	if p.synced && digest == p.lastDigest {
		return false, nil
	}

	now := p.clock.Now()
	txRows := export.Rows(state.Transactions, state.Categories, export.WithLabels(p.config.Labels), export.WithLocation(now.Location()))
	summaryRows := SummaryRows(stats.Month(state.Transactions, now, 0), state.Categories)

	if err := p.retry(ctx, func() error { return p.mirror.WriteTransactions(ctx, txRows) }); err != nil {
		return false, fmt.Errorf("write transactions: %w", err)
	}
	if err := p.retry(ctx, func() error { return p.mirror.WriteSummary(ctx, summaryRows) }); err != nil {
		return false, fmt.Errorf("write summary: %w", err)
	}

	p.lastDigest, p.synced = digest, true
	p.logger.InfoContext(ctx, "Mirrored ledger to sheets",
		log.FieldCount, len(state.Transactions),
		log.FieldOperation, log.OpSync)
	return true, nil
}

func (p *SyncProcessor) retry(ctx context.Context, write func() error) error {
	delay := p.config.RetryDelay
	var err error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		if err = write(); err == nil {
			return nil
		}
		if attempt == p.config.MaxRetries {
			break
		}
		p.logger.WarnContext(ctx, "Sheets write failed, retrying",
			log.FieldError, err,
			"attempt", attempt,
			"delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// SummaryRows lays out a month summary as a small table followed by the
// expense breakdown, with category names resolved.
func SummaryRows(s core.Summary, categories []core.Category) [][]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	rows := [][]string{
		{"Month", "Income", "Expenses", "Balance", "Transactions"},
		{s.Label, s.TotalIncome.StringFixed(), s.TotalExpenses.StringFixed(), s.Balance.StringFixed(), fmt.Sprint(s.Count)},
		{},
		{"Category", "Amount"},
	}
	for _, ca := range s.ByCategory {
		name := names[ca.CategoryID]
		if name == "" {
			name = ca.CategoryID
		}
		rows = append(rows, []string{name, ca.Amount.StringFixed()})
	}
	return rows
}
