package services

import (
	"context"
	"fmt"
	"sync"

	"hamanets/internal/amqp"
	"hamanets/internal/core"
	"hamanets/internal/ledger"
	"hamanets/internal/log"
	"hamanets/internal/storage"
)

// Entity names used in change notifications.
const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"
	EntityBudget      = "budget"
	EntityReminder    = "reminder"
	EntitySettings    = "settings"
	EntityLedger      = "ledger"
)

// Publisher announces committed ledger changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService orchestrates ledger mutations across the in-memory store,
// the repository and the change publisher.
//
// Every mutation is applied, persisted and then announced. When the save
// fails the store is rolled back and the error returned; publish failures
// are logged only, since the change is already durable.
type LedgerService struct {
	store     *ledger.Store
	repo      storage.Repository
	publisher Publisher
	logger    *log.Logger

	// serializes mutate+save so saves land in revision order
	mu sync.Mutex
}

// PublisherFrom adapts an optional AMQP client, keeping a nil client from
// becoming a non-nil interface value.
func PublisherFrom(c *amqp.Client) Publisher {
	if c == nil {
		return nil
	}
	return c
}

// NewLedgerService wires a service. publisher may be nil.
func NewLedgerService(store *ledger.Store, repo storage.Repository, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:     store,
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Store exposes the underlying ledger for reads.
func (s *LedgerService) Store() *ledger.Store { return s.store }

// Ping checks the repository when it can be probed, as SQLite can.
func (s *LedgerService) Ping(ctx context.Context) error {
	if p, ok := s.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// commit runs mutate and persists the result when it reports a change.
func (s *LedgerService) commit(ctx context.Context, entity, op string, mutate func() (id string, changed bool, err error)) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	id, changed, err := mutate()
	if err != nil || !changed {
		return id, changed, err
	}

	if err := s.repo.Save(ctx, s.store.Snapshot()); err != nil {
		s.store.Replace(before)
		log.LogError(ctx, s.logger, "Failed to persist ledger", err, op,
			log.NewFields().WithEntity(entity, id))
		return id, false, fmt.Errorf("persist %s: %w", entity, err)
	}

	rev := s.store.Revision()
	s.logger.DebugContext(ctx, "Ledger change committed",
		log.NewFields().WithOperation(op).WithEntity(entity, id).WithRevision(rev).ToSlice()...)
	s.publish(ctx, amqp.NewLedgerChangedMessage(rev, entity, op, id))
	return id, true, nil
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerChangedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldError, err,
			log.FieldEntity, msg.Entity,
			log.FieldRevision, msg.Revision)
	}
}

func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	_, _, err := s.commit(ctx, EntityTransaction, log.OpCreate, func() (string, bool, error) {
		var err error
		out, err = s.store.AddTransaction(tx)
		return out.ID, err == nil, err
	})
	return out, err
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, tx core.Transaction) (bool, error) {
	_, changed, err := s.commit(ctx, EntityTransaction, log.OpUpdate, func() (string, bool, error) {
		changed, err := s.store.UpdateTransaction(tx)
		return tx.ID, changed, err
	})
	return changed, err
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.commit(ctx, EntityTransaction, log.OpDelete, func() (string, bool, error) {
		return id, s.store.DeleteTransaction(id), nil
	})
	return changed, err
}

// ImportTransactions adds every transaction in one commit. Invalid entries
// are skipped and reported; the valid rest is still saved.
func (s *LedgerService) ImportTransactions(ctx context.Context, txns []core.Transaction) (int, []error, error) {
	var (
		added   int
		rejects []error
	)
	_, _, err := s.commit(ctx, EntityLedger, log.OpImport, func() (string, bool, error) {
		// oldest first so the newest import ends up on top
		for i := len(txns) - 1; i >= 0; i-- {
			if _, err := s.store.AddTransaction(txns[i]); err != nil {
				rejects = append(rejects, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			added++
		}
		return "", added > 0, nil
	})
	if err != nil {
		return 0, rejects, err
	}
	return added, rejects, nil
}

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var out core.Category
	_, _, err := s.commit(ctx, EntityCategory, log.OpCreate, func() (string, bool, error) {
		var err error
		out, err = s.store.AddCategory(c)
		return out.ID, err == nil, err
	})
	return out, err
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (bool, error) {
	_, changed, err := s.commit(ctx, EntityCategory, log.OpUpdate, func() (string, bool, error) {
		changed, err := s.store.UpdateCategory(c)
		return c.ID, changed, err
	})
	return changed, err
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.commit(ctx, EntityCategory, log.OpDelete, func() (string, bool, error) {
		changed, err := s.store.DeleteCategory(id)
		return id, changed, err
	})
	return changed, err
}

func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	_, _, err := s.commit(ctx, EntityBudget, log.OpCreate, func() (string, bool, error) {
		var err error
		out, err = s.store.AddBudget(b)
		return out.ID, err == nil, err
	})
	return out, err
}

func (s *LedgerService) UpdateBudget(ctx context.Context, b core.Budget) (bool, error) {
	_, changed, err := s.commit(ctx, EntityBudget, log.OpUpdate, func() (string, bool, error) {
		changed, err := s.store.UpdateBudget(b)
		return b.ID, changed, err
	})
	return changed, err
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.commit(ctx, EntityBudget, log.OpDelete, func() (string, bool, error) {
		return id, s.store.DeleteBudget(id), nil
	})
	return changed, err
}

func (s *LedgerService) AddReminder(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	var out core.Reminder
	_, _, err := s.commit(ctx, EntityReminder, log.OpCreate, func() (string, bool, error) {
		var err error
		out, err = s.store.AddReminder(r)
		return out.ID, err == nil, err
	})
	return out, err
}

func (s *LedgerService) UpdateReminder(ctx context.Context, r core.Reminder) (bool, error) {
	_, changed, err := s.commit(ctx, EntityReminder, log.OpUpdate, func() (string, bool, error) {
		changed, err := s.store.UpdateReminder(r)
		return r.ID, changed, err
	})
	return changed, err
}

func (s *LedgerService) DeleteReminder(ctx context.Context, id string) (bool, error) {
	_, changed, err := s.commit(ctx, EntityReminder, log.OpDelete, func() (string, bool, error) {
		return id, s.store.DeleteReminder(id), nil
	})
	return changed, err
}

func (s *LedgerService) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.Settings, error) {
	var out core.Settings
	_, _, err := s.commit(ctx, EntitySettings, log.OpUpdate, func() (string, bool, error) {
		rev := s.store.Revision()
		var err error
		out, err = s.store.UpdateSettings(patch)
		return "", err == nil && s.store.Revision() != rev, err
	})
	if err != nil {
		return s.store.Settings(), err
	}
	return out, nil
}
