package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/services/candidates"
	"github.com/Jayce162/Petpals/internal/services/entitlements"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
)

func TestCreateBuildsEngineWithCappedPool(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, entitlements.Config{}, Config{}, func() time.Time { return now })

	session, err := svc.Create(context.Background(), 11, enums.GenderFemale)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ID != "sess-1" || session.ActorID != 11 || session.IsPremium {
		t.Fatalf("unexpected session: %+v", session)
	}
	if got := session.Engine.Remaining(); got != 2 {
		t.Fatalf("expected free pool of 2, got %d", got)
	}
	if !session.CreatedAt.Equal(now) || !session.LastSeen().Equal(now) {
		t.Fatalf("unexpected timestamps: created=%s seen=%s", session.CreatedAt, session.LastSeen())
	}

	if _, err := session.Engine.Undo(context.Background()); !errors.Is(err, lifecycle.ErrNotEntitled) {
		t.Fatalf("free actor must not undo, got %v", err)
	}
}

func TestCreatePremiumGetsFullPool(t *testing.T) {
	svc := newTestService(t, entitlements.Config{DefaultIsPremium: true}, Config{}, time.Now)

	session, err := svc.Create(context.Background(), 12, enums.GenderMale)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !session.IsPremium || session.Engine.Remaining() != 4 {
		t.Fatalf("expected premium full pool, got premium=%v remaining=%d", session.IsPremium, session.Engine.Remaining())
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, entitlements.Config{}, Config{}, time.Now)

	if _, err := svc.Create(context.Background(), 0, enums.GenderMale); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for actor, got %v", err)
	}
	if _, err := svc.Create(context.Background(), 1, enums.Gender("x")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for gender, got %v", err)
	}
}

func TestCreateRespectsSessionLimit(t *testing.T) {
	svc := newTestService(t, entitlements.Config{}, Config{MaxSessions: 1}, time.Now)

	if _, err := svc.Create(context.Background(), 1, enums.GenderMale); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), 2, enums.GenderMale); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}

func TestConcurrentCreateHoldsSessionLimit(t *testing.T) {
	const limit = 3
	svc := newTestService(t, entitlements.Config{}, Config{MaxSessions: limit}, time.Now)

	var (
		wg      sync.WaitGroup
		created atomic.Int64
		limited atomic.Int64
	)
	start := make(chan struct{})
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(actorID int64) {
			defer wg.Done()
			<-start
			_, err := svc.Create(context.Background(), actorID, enums.GenderFemale)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrTooManySessions):
				limited.Add(1)
			default:
				t.Errorf("create %d: %v", actorID, err)
			}
		}(int64(i))
	}
	close(start)
	wg.Wait()

	if got := svc.Count(); got != limit {
		t.Fatalf("unexpected session count: got %d want %d", got, limit)
	}
	if created.Load() != limit || limited.Load() != 32-limit {
		t.Fatalf("unexpected outcome: created=%d limited=%d", created.Load(), limited.Load())
	}
}

func TestGetDeleteAndEvict(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := newTestService(t, entitlements.Config{}, Config{IdleTTL: 30 * time.Minute}, func() time.Time { return clock })
	ctx := context.Background()

	idle, err := svc.Create(ctx, 1, enums.GenderMale)
	if err != nil {
		t.Fatalf("create idle: %v", err)
	}
	busy, err := svc.Create(ctx, 2, enums.GenderFemale)
	if err != nil {
		t.Fatalf("create busy: %v", err)
	}

	pending, err := busy.Engine.Swipe(ctx, enums.DirectionLike, busy.ActorGender, mustCurrent(t, busy))
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if result, ok := pending.Result(); !ok || !result.Matched {
		t.Fatalf("expected inline match, got %+v ok=%v", result, ok)
	}
	if _, err := idle.Engine.DirectMatch(ctx, model.Candidate{ID: "admirer"}); err != nil {
		t.Fatalf("direct match: %v", err)
	}

	clock = now.Add(20 * time.Minute)
	if _, err := svc.Get(busy.ID); err != nil {
		t.Fatalf("get busy: %v", err)
	}

	clock = now.Add(40 * time.Minute)
	evicted := svc.EvictIdle(clock)
	if len(evicted) != 1 || evicted[0].SessionID != idle.ID {
		t.Fatalf("expected only idle session evicted, got %+v", evicted)
	}
	if evicted[0].ActiveMatches != 1 {
		t.Fatalf("expected one active match in evicted session, got %d", evicted[0].ActiveMatches)
	}
	if _, err := svc.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected evicted session gone, got %v", err)
	}

	if err := svc.Delete(busy.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(busy.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected no sessions left")
	}
}

func TestEvictIdleDisabled(t *testing.T) {
	svc := newTestService(t, entitlements.Config{}, Config{}, time.Now)
	if _, err := svc.Create(context.Background(), 1, enums.GenderMale); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := svc.EvictIdle(time.Now().Add(365 * 24 * time.Hour)); len(got) != 0 {
		t.Fatalf("zero idle ttl must keep sessions, evicted %d", len(got))
	}
}

func newTestService(t *testing.T, entCfg entitlements.Config, cfg Config, now func() time.Time) *Service {
	t.Helper()

	source, err := candidates.NewStaticSource([]candidates.StaticEntry{
		{ID: "p1", Gender: "male", Name: "Rex"},
		{ID: "p2", Gender: "female", Name: "Luna"},
		{ID: "p3", Gender: "male", Name: "Bolt"},
		{ID: "p4", Gender: "female", Name: "Mochi"},
	})
	if err != nil {
		t.Fatalf("static source: %v", err)
	}

	var seq atomic.Int64
	return NewService(Dependencies{
		Candidates:   candidates.NewService(source, candidates.Config{FreePoolSize: 2}),
		Entitlements: entitlements.NewService(nil, entCfg),
		NewResolver:  func() lifecycle.MatchResolver { return lifecycle.AlwaysMatch },
		Now:          now,
		NewID: func() string {
			return fmt.Sprintf("sess-%d", seq.Add(1))
		},
	}, cfg)
}

func mustCurrent(t *testing.T, session *Session) model.Candidate {
	t.Helper()

	current, err := session.Engine.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	return current
}
