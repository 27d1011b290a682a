package auth

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// RevocationStore persists revoked refresh-token jtis. An entry blocks its
// jti until the token's own expiry passes, at which point the token is dead
// anyway and the entry becomes garbage.
type RevocationStore interface {
	Revoker

	RevokeTx(ctx context.Context, tx bun.IDB, tokenID string, expiresAt time.Time) error
	IsRevokedTx(ctx context.Context, tx bun.IDB, tokenID string) (bool, error)

	// Prune removes entries whose expiry has passed. It never touches a
	// live entry; pruning is advisory and can run on any cadence.
	Prune(ctx context.Context, now time.Time) (int64, error)
}

type revocations struct {
	db *bun.DB
}

var _ RevocationStore = (*revocations)(nil)

// NewRevocationStore builds the bun-backed RevocationStore.
func NewRevocationStore(db *bun.DB) RevocationStore {
	return &revocations{db: db}
}

func (r *revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return r.RevokeTx(ctx, r.db, tokenID, expiresAt)
}

// RevokeTx is idempotent: revoking an already revoked jti is a no-op, not
// an error.
func (r *revocations) RevokeTx(ctx context.Context, tx bun.IDB, tokenID string, expiresAt time.Time) error {
	entry := &RevocationEntry{
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}

	_, err := tx.NewInsert().
		Model(entry).
		On("CONFLICT (token_id) DO NOTHING").
		Exec(ctx)

	return err
}

func (r *revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.IsRevokedTx(ctx, r.db, tokenID)
}

func (r *revocations) IsRevokedTx(ctx context.Context, tx bun.IDB, tokenID string) (bool, error) {
	return tx.NewSelect().
		Model((*RevocationEntry)(nil)).
		Where("?TableAlias.token_id = ?", tokenID).
		Exists(ctx)
}

func (r *revocations) Prune(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*RevocationEntry)(nil)).
		Where("?TableAlias.expires_at <= ?", now).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// StartRevocationSweeper prunes expired entries every interval until ctx is
// cancelled. An unpruned expired entry is harmless, so sweep errors are
// logged and the loop keeps going.
func StartRevocationSweeper(ctx context.Context, store RevocationStore, interval time.Duration, logger Logger) {
	if logger == nil {
		logger = defLogger{}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				pruned, err := store.Prune(ctx, now)
				if err != nil {
					logger.Warn("revocation sweep error", "error", err)
					continue
				}
				if pruned > 0 {
					logger.Debug("revocation sweep pruned entries", "count", pruned)
				}
			}
		}
	}()
}
