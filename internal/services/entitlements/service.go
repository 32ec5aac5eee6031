package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	pgrepo "github.com/Jayce162/Petpals/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type Store interface {
	GetEntitlement(ctx context.Context, actorID int64) (pgrepo.EntitlementRecord, error)
}

type Config struct {
	DefaultIsPremium bool
	FreeUndo         bool
	FreeExtend       bool
	FreeFullPool     bool
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

type Snapshot struct {
	ActorID      int64
	IsPremium    bool
	PremiumUntil *time.Time
}

func NewService(store Store, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, actorID int64) (Snapshot, error) {
	if actorID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if s.store == nil {
		return Snapshot{ActorID: actorID, IsPremium: s.cfg.DefaultIsPremium}, nil
	}

	rec, err := s.store.GetEntitlement(ctx, actorID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load entitlement: %w", err)
	}

	now := s.now().UTC()
	isPremium := s.cfg.DefaultIsPremium
	if rec.PremiumUntil != nil {
		isPremium = rec.PremiumUntil.After(now)
	}

	return Snapshot{
		ActorID:      actorID,
		IsPremium:    isPremium,
		PremiumUntil: rec.PremiumUntil,
	}, nil
}

// Allows reports whether the snapshot grants capability under cfg.
func (s *Service) Allows(snapshot Snapshot, capability enums.Capability) bool {
	if snapshot.IsPremium {
		return true
	}
	switch capability {
	case enums.CapabilityUndo:
		return s.cfg.FreeUndo
	case enums.CapabilityExtend:
		return s.cfg.FreeExtend
	case enums.CapabilityFullPool:
		return s.cfg.FreeFullPool
	default:
		return false
	}
}

// For binds the service to one actor. Every check re-reads the store so a
// purchase made mid-session takes effect on the next premium action.
func (s *Service) For(actorID int64) *Checker {
	return &Checker{svc: s, actorID: actorID}
}

type Checker struct {
	svc     *Service
	actorID int64
}

func (c *Checker) Allowed(ctx context.Context, capability enums.Capability) (bool, error) {
	snapshot, err := c.svc.Get(ctx, c.actorID)
	if err != nil {
		return false, err
	}
	return c.svc.Allows(snapshot, capability), nil
}
