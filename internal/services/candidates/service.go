package candidates

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/pkg/validate"
)

var ErrValidation = errors.New("validation error")

type Source interface {
	List(ctx context.Context, actorID int64) ([]model.Candidate, error)
}

type Config struct {
	FreePoolSize int
}

type Service struct {
	source Source
	cfg    Config
}

func NewService(source Source, cfg Config) *Service {
	if cfg.FreePoolSize < 0 {
		cfg.FreePoolSize = 0
	}
	return &Service{source: source, cfg: cfg}
}

// Load returns the swipe queue for the actor. Without the full pool the queue
// is cut to FreePoolSize; zero leaves it uncapped.
func (s *Service) Load(ctx context.Context, actorID int64, fullPool bool) ([]model.Candidate, error) {
	if actorID <= 0 {
		return nil, ErrValidation
	}
	if s.source == nil {
		return []model.Candidate{}, nil
	}

	list, err := s.source.List(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	out := dedupe(list)
	if !fullPool && s.cfg.FreePoolSize > 0 && len(out) > s.cfg.FreePoolSize {
		out = out[:s.cfg.FreePoolSize]
	}
	return out, nil
}

func dedupe(list []model.Candidate) []model.Candidate {
	seen := make(map[string]struct{}, len(list))
	out := make([]model.Candidate, 0, len(list))
	for _, c := range list {
		id, ok := validate.ID(c.ID)
		if !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.ID = id
		out = append(out, c)
	}
	return out
}

type StaticEntry struct {
	ID         string
	Gender     string
	Name       string
	Species    string
	Breed      string
	DistanceKM float64
}

// StaticSource serves the same fixed pool to every actor.
type StaticSource struct {
	candidates []model.Candidate
}

func NewStaticSource(entries []StaticEntry) (*StaticSource, error) {
	out := make([]model.Candidate, 0, len(entries))
	for i, e := range entries {
		gender, ok := enums.ParseGender(e.Gender)
		if !ok {
			return nil, fmt.Errorf("candidate #%d: invalid gender %q", i, e.Gender)
		}
		id, ok := validate.ID(e.ID)
		if !ok {
			return nil, fmt.Errorf("candidate #%d: id is required", i)
		}
		out = append(out, model.Candidate{
			ID:         id,
			Gender:     gender,
			Name:       e.Name,
			Species:    e.Species,
			Breed:      e.Breed,
			DistanceKM: e.DistanceKM,
		})
	}
	return &StaticSource{candidates: out}, nil
}

func (s *StaticSource) List(context.Context, int64) ([]model.Candidate, error) {
	return append([]model.Candidate(nil), s.candidates...), nil
}
