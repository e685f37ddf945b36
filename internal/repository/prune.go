package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/db"
)

// PruneResult counts the rows removed by Prune.
type PruneResult struct {
	Calls int64
	Runs  int64
}

// Prune deletes call-log and run records older than cutoff in one transaction.
func Prune(ctx context.Context, uow db.UnitOfWork, cutoff time.Time) (PruneResult, error) {
	var result PruneResult
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		calls, err := NewSQLiteCallLogRepo(tx).DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		runs, err := NewSQLiteRunRepo(tx).DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		result = PruneResult{Calls: calls, Runs: runs}
		return nil
	})
	if err != nil {
		return PruneResult{}, fmt.Errorf("pruning history: %w", err)
	}
	return result, nil
}
