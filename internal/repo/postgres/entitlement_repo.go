package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EntitlementRepo struct {
	pool *pgxpool.Pool
}

type EntitlementRecord struct {
	ActorID      int64
	PremiumUntil *time.Time
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

func (r *EntitlementRepo) GetEntitlement(ctx context.Context, actorID int64) (EntitlementRecord, error) {
	if actorID <= 0 {
		return EntitlementRecord{}, fmt.Errorf("invalid actor id")
	}
	if r.pool == nil {
		return EntitlementRecord{ActorID: actorID}, nil
	}

	rec := EntitlementRecord{ActorID: actorID}
	err := r.pool.QueryRow(ctx, `
SELECT premium_until
FROM entitlements
WHERE actor_id = $1
LIMIT 1
`, actorID).Scan(&rec.PremiumUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EntitlementRecord{ActorID: actorID}, nil
		}
		return EntitlementRecord{}, fmt.Errorf("get entitlement: %w", err)
	}

	return rec, nil
}
