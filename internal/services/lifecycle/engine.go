package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/domain/rules"
)

const maxIDAttempts = 3

type Entitlements interface {
	Allowed(ctx context.Context, capability enums.Capability) (bool, error)
}

type Config struct {
	// CommitDelay postpones the swipe commit. Zero commits inline.
	CommitDelay time.Duration
	// RetractMatchOnUndo removes a match created by the swipe being undone.
	RetractMatchOnUndo bool
}

type Dependencies struct {
	Candidates   []model.Candidate
	Entitlements Entitlements
	Resolver     MatchResolver
	Scheduler    Scheduler
	Now          func() time.Time
	NewID        func() string
	Logger       *zap.Logger
}

type UndoResult struct {
	Candidate        model.Candidate
	Direction        enums.Direction
	RetractedMatchID string
}

type MatchView struct {
	Match          model.Match
	TimeLeft       time.Duration
	HoursLeft      int
	IsExpiringSoon bool
	CanExtend      bool
	IsExpired      bool
	Status         enums.MatchStatus
}

type Engine struct {
	mu         sync.Mutex
	candidates []model.Candidate
	cursor     int
	matches    map[string]*model.Match
	history    []model.SwipeHistoryEntry
	pending    *PendingSwipe

	entitlements Entitlements
	resolver     MatchResolver
	scheduler    Scheduler
	newID        func() string
	now          func() time.Time
	logger       *zap.Logger
	cfg          Config
}

func NewEngine(deps Dependencies, cfg Config) *Engine {
	if cfg.CommitDelay < 0 {
		cfg.CommitDelay = 0
	}

	e := &Engine{
		candidates:   append([]model.Candidate(nil), deps.Candidates...),
		matches:      make(map[string]*model.Match),
		entitlements: deps.Entitlements,
		resolver:     deps.Resolver,
		scheduler:    deps.Scheduler,
		newID:        deps.NewID,
		now:          deps.Now,
		logger:       deps.Logger,
		cfg:          cfg,
	}
	if e.resolver == nil {
		e.resolver = NewRandomResolver(rules.DefaultMatchProbability, time.Now().UnixNano())
	}
	if e.scheduler == nil {
		e.scheduler = TimerScheduler{}
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Swipe accepts a decision on the candidate at the top of the queue and
// schedules its commit. Only one swipe may be pending at a time.
func (e *Engine) Swipe(ctx context.Context, direction enums.Direction, actorGender enums.Gender, candidate model.Candidate) (*PendingSwipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if direction != enums.DirectionLike && direction != enums.DirectionPass {
		return nil, ErrUnsupportedDirection
	}
	if strings.TrimSpace(candidate.ID) == "" {
		return nil, ErrValidation
	}

	e.mu.Lock()
	if e.pending != nil {
		e.mu.Unlock()
		return nil, ErrSwipeInFlight
	}
	if e.cursor >= len(e.candidates) {
		e.mu.Unlock()
		return nil, ErrOutOfRange
	}
	current := e.candidates[e.cursor]
	if current.ID != candidate.ID {
		e.mu.Unlock()
		return nil, ErrCandidateMismatch
	}

	pending := newPendingSwipe(direction, current)
	e.pending = pending
	delay := e.cfg.CommitDelay
	e.mu.Unlock()

	if delay == 0 {
		e.commit(pending, actorGender)
		return pending, nil
	}
	e.scheduler.AfterFunc(delay, func() {
		e.commit(pending, actorGender)
	})
	return pending, nil
}

func (e *Engine) commit(p *PendingSwipe, actorGender enums.Gender) {
	e.mu.Lock()

	entry := model.SwipeHistoryEntry{
		Direction:   p.direction,
		CandidateID: p.candidate.ID,
	}
	e.cursor++

	result := SwipeResult{
		Direction: p.direction,
		Candidate: p.candidate,
	}
	if p.direction == enums.DirectionLike && e.resolver.Resolve(p.candidate) {
		m := e.createMatchLocked(p.candidate.ID, rules.IsFirstMoveYours(actorGender, p.candidate.Gender))
		entry.MatchID = m.ID
		snapshot := m.Clone()
		result.Matched = true
		result.Match = &snapshot
	}
	e.history = append(e.history, entry)
	e.pending = nil
	e.mu.Unlock()

	e.logger.Debug("swipe committed",
		zap.String("candidate_id", p.candidate.ID),
		zap.String("direction", string(p.direction)),
		zap.Bool("matched", result.Matched),
	)
	p.complete(result)
}

// DirectMatch creates a match without a swipe, as when accepting an admirer.
// The actor always moves first and the undo history is untouched.
func (e *Engine) DirectMatch(ctx context.Context, candidate model.Candidate) (model.Match, error) {
	if err := ctx.Err(); err != nil {
		return model.Match{}, err
	}
	if strings.TrimSpace(candidate.ID) == "" {
		return model.Match{}, ErrValidation
	}

	e.mu.Lock()
	m := e.createMatchLocked(candidate.ID, true)
	snapshot := m.Clone()
	e.mu.Unlock()

	e.logger.Debug("direct match created",
		zap.String("match_id", snapshot.ID),
		zap.String("candidate_id", candidate.ID),
	)
	return snapshot, nil
}

func (e *Engine) createMatchLocked(candidateID string, firstMoveYours bool) *model.Match {
	now := e.now().UTC()
	m := &model.Match{
		ID:               e.nextIDLocked(),
		CandidateID:      candidateID,
		MatchedAt:        now,
		IsFirstMoveYours: firstMoveYours,
		ExpiresAt:        rules.ExpiresAt(now),
	}
	e.matches[m.ID] = m
	return m
}

func (e *Engine) nextIDLocked() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := e.newID()
		if id == "" {
			continue
		}
		if _, exists := e.matches[id]; !exists {
			return id
		}
	}
	return uuid.NewString()
}

// ExtendMatch pushes the deadline of an expiring match out by one extension
// step, at most once per cooldown period.
func (e *Engine) ExtendMatch(ctx context.Context, matchID string) (model.Match, error) {
	if strings.TrimSpace(matchID) == "" {
		return model.Match{}, ErrValidation
	}
	if err := e.require(ctx, enums.CapabilityExtend); err != nil {
		return model.Match{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.matches[matchID]
	if !ok {
		return model.Match{}, ErrMatchNotFound
	}

	now := e.now().UTC()
	if retryAfter := rules.ExtensionRetryAfter(*m, now); retryAfter > 0 {
		return model.Match{}, ExtensionRateLimitedError{MatchID: matchID, RetryAfter: retryAfter}
	}
	if !rules.IsExpiringSoon(*m, now) {
		return model.Match{}, ErrNotEligible
	}

	m.ExpiresAt = m.ExpiresAt.Add(rules.ExtensionStep)
	m.LastExtendedAt = &now

	e.logger.Info("match extended",
		zap.String("match_id", m.ID),
		zap.Time("expires_at", m.ExpiresAt),
	)
	return m.Clone(), nil
}

// Undo rewinds the queue by one swipe and returns the candidate to show again.
func (e *Engine) Undo(ctx context.Context) (UndoResult, error) {
	if err := e.require(ctx, enums.CapabilityUndo); err != nil {
		return UndoResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != nil {
		return UndoResult{}, ErrSwipeInFlight
	}
	if e.cursor == 0 || len(e.history) == 0 {
		return UndoResult{}, ErrNothingToUndo
	}

	last := len(e.history) - 1
	entry := e.history[last]
	e.history = e.history[:last]
	e.cursor--

	result := UndoResult{
		Candidate: e.candidates[e.cursor],
		Direction: entry.Direction,
	}
	if e.cfg.RetractMatchOnUndo && entry.MatchID != "" {
		if _, ok := e.matches[entry.MatchID]; ok {
			delete(e.matches, entry.MatchID)
			result.RetractedMatchID = entry.MatchID
		}
	}

	e.logger.Debug("swipe undone",
		zap.String("candidate_id", result.Candidate.ID),
		zap.String("direction", string(result.Direction)),
		zap.String("retracted_match_id", result.RetractedMatchID),
	)
	return result, nil
}

func (e *Engine) require(ctx context.Context, capability enums.Capability) error {
	if e.entitlements == nil {
		return ErrNotEntitled
	}
	allowed, err := e.entitlements.Allowed(ctx, capability)
	if err != nil {
		return fmt.Errorf("check %s entitlement: %w", capability, err)
	}
	if !allowed {
		return ErrNotEntitled
	}
	return nil
}

func (e *Engine) Current() (model.Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor >= len(e.candidates) {
		return model.Candidate{}, ErrOutOfRange
	}
	return e.candidates[e.cursor], nil
}

func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.candidates) - e.cursor
}

func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// AppendCandidates refills the queue behind the current cursor.
func (e *Engine) AppendCandidates(candidates ...model.Candidate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = append(e.candidates, candidates...)
}

func (e *Engine) Match(matchID string) (model.Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.matches[matchID]
	if !ok {
		return model.Match{}, ErrMatchNotFound
	}
	return m.Clone(), nil
}

// Matches returns every match, expired ones included, oldest first.
func (e *Engine) Matches() []model.Match {
	e.mu.Lock()
	out := make([]model.Match, 0, len(e.matches))
	for _, m := range e.matches {
		out = append(out, m.Clone())
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchedAt.Equal(out[j].MatchedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].MatchedAt.Before(out[j].MatchedAt)
	})
	return out
}

func (e *Engine) Views() []MatchView {
	now := e.now().UTC()
	matches := e.Matches()
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, Describe(m, now))
	}
	return views
}

func Describe(m model.Match, now time.Time) MatchView {
	return MatchView{
		Match:          m,
		TimeLeft:       rules.TimeLeft(m, now),
		HoursLeft:      rules.HoursLeft(m, now),
		IsExpiringSoon: rules.IsExpiringSoon(m, now),
		CanExtend:      rules.CanExtend(m, now),
		IsExpired:      rules.IsExpired(m, now),
		Status:         rules.Status(m, now),
	}
}
