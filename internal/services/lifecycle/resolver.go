package lifecycle

import (
	"math/rand"
	"sync"

	"github.com/Jayce162/Petpals/internal/domain/model"
)

// MatchResolver decides whether a like turns into a match.
type MatchResolver interface {
	Resolve(candidate model.Candidate) bool
}

type ResolverFunc func(candidate model.Candidate) bool

func (f ResolverFunc) Resolve(candidate model.Candidate) bool {
	return f(candidate)
}

// AlwaysMatch and NeverMatch are fixed outcomes for callers that must not
// depend on chance.
var (
	AlwaysMatch MatchResolver = ResolverFunc(func(model.Candidate) bool { return true })
	NeverMatch  MatchResolver = ResolverFunc(func(model.Candidate) bool { return false })
)

// RandomResolver simulates the other side liking back with a fixed
// probability. The same seed yields the same sequence of outcomes.
type RandomResolver struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	probability float64
}

func NewRandomResolver(probability float64, seed int64) *RandomResolver {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return &RandomResolver{
		rnd:         rand.New(rand.NewSource(seed)),
		probability: probability,
	}
}

func (r *RandomResolver) Resolve(model.Candidate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64() < r.probability
}

func (r *RandomResolver) Probability() float64 {
	return r.probability
}
