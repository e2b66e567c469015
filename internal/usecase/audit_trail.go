package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// OutboxAuditTrail пишет события аудита в outbox-таблицу в отдельной транзакции.
// Отправку в Kafka выполняет OutboxWorker.
type OutboxAuditTrail struct {
	outboxRepo OutboxRepository
	dbPool     transaction.Transactional
}

func NewOutboxAuditTrail(outboxRepo OutboxRepository, dbPool transaction.Transactional) *OutboxAuditTrail {
	return &OutboxAuditTrail{
		outboxRepo: outboxRepo,
		dbPool:     dbPool,
	}
}

func (a *OutboxAuditTrail) Record(ctx context.Context, event *OutboxEvent) (err error) {
	const op = "OutboxAuditTrail.Record"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, a.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	if _, err = a.outboxRepo.Create(ctx, event); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
