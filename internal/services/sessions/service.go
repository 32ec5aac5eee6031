package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/services/entitlements"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

type CandidateLoader interface {
	Load(ctx context.Context, actorID int64, fullPool bool) ([]model.Candidate, error)
}

type EntitlementService interface {
	Get(ctx context.Context, actorID int64) (entitlements.Snapshot, error)
	Allows(snapshot entitlements.Snapshot, capability enums.Capability) bool
	For(actorID int64) *entitlements.Checker
}

type Dependencies struct {
	Candidates   CandidateLoader
	Entitlements EntitlementService
	// NewResolver builds one resolver per session so sessions never share a
	// random stream.
	NewResolver func() lifecycle.MatchResolver
	Scheduler   lifecycle.Scheduler
	Now         func() time.Time
	NewID       func() string
	Logger      *zap.Logger
}

type Config struct {
	IdleTTL     time.Duration
	MaxSessions int
	Engine      lifecycle.Config
}

type Session struct {
	ID          string
	ActorID     int64
	ActorGender enums.Gender
	IsPremium   bool
	CreatedAt   time.Time
	Engine      *lifecycle.Engine

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

type Evicted struct {
	SessionID     string
	ActorID       int64
	ActiveMatches int
}

type Service struct {
	deps Dependencies
	cfg  Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(deps Dependencies, cfg Config) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = lifecycle.TimerScheduler{}
	}

	return &Service{
		deps:     deps,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

func (s *Service) Create(ctx context.Context, actorID int64, gender enums.Gender) (*Session, error) {
	if actorID <= 0 {
		return nil, ErrValidation
	}
	if gender != enums.GenderMale && gender != enums.GenderFemale {
		return nil, ErrValidation
	}
	if s.deps.Entitlements == nil {
		return nil, fmt.Errorf("entitlement service is nil")
	}

	if s.cfg.MaxSessions > 0 && s.Count() >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	snapshot, err := s.deps.Entitlements.Get(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load entitlements: %w", err)
	}

	var pool []model.Candidate
	if s.deps.Candidates != nil {
		fullPool := s.deps.Entitlements.Allows(snapshot, enums.CapabilityFullPool)
		pool, err = s.deps.Candidates.Load(ctx, actorID, fullPool)
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
	}

	var resolver lifecycle.MatchResolver
	if s.deps.NewResolver != nil {
		resolver = s.deps.NewResolver()
	}

	now := s.deps.Now().UTC()
	session := &Session{
		ID:          s.deps.NewID(),
		ActorID:     actorID,
		ActorGender: gender,
		IsPremium:   snapshot.IsPremium,
		CreatedAt:   now,
		lastSeen:    now,
		Engine: lifecycle.NewEngine(lifecycle.Dependencies{
			Candidates:   pool,
			Entitlements: s.deps.Entitlements.For(actorID),
			Resolver:     resolver,
			Scheduler:    s.deps.Scheduler,
			Now:          s.deps.Now,
			Logger:       s.deps.Logger.With(zap.Int64("actor_id", actorID)),
		}, s.cfg.Engine),
	}

	// The early check skips loading for a full store; this one holds the limit
	// when creates race.
	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	if _, exists := s.sessions[session.ID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("session id collision: %s", session.ID)
	}
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.deps.Logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.Int64("actor_id", actorID),
		zap.Bool("is_premium", snapshot.IsPremium),
		zap.Int("candidates", len(pool)),
	)
	return session, nil
}

// Get returns the session and marks it as used.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	session.touch(s.deps.Now().UTC())
	return session, nil
}

func (s *Service) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions unused for longer than IdleTTL. A non-positive
// IdleTTL keeps every session.
func (s *Service) EvictIdle(now time.Time) []Evicted {
	if s.cfg.IdleTTL <= 0 {
		return nil
	}
	cutoff := now.UTC().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	var victims []*Session
	for id, session := range s.sessions {
		if session.LastSeen().Before(cutoff) {
			victims = append(victims, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	out := make([]Evicted, 0, len(victims))
	for _, session := range victims {
		active := 0
		for _, view := range session.Engine.Views() {
			if !view.IsExpired {
				active++
			}
		}
		out = append(out, Evicted{
			SessionID:     session.ID,
			ActorID:       session.ActorID,
			ActiveMatches: active,
		})
	}
	return out
}
