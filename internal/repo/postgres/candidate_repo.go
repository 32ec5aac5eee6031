package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
)

const defaultCandidateLimit = 200

type CandidateRepo struct {
	pool  *pgxpool.Pool
	limit int
}

type CandidateRecord struct {
	PetID      string
	OwnerID    int64
	Name       string
	Gender     string
	Species    string
	Breed      string
	DistanceKM *float64
}

func NewCandidateRepo(pool *pgxpool.Pool, limit int) *CandidateRepo {
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	return &CandidateRepo{pool: pool, limit: limit}
}

// List returns approved pets not owned by the actor, nearest first. Pets
// without a known location sort last.
func (r *CandidateRepo) List(ctx context.Context, actorID int64) ([]model.Candidate, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("invalid actor id")
	}
	if r.pool == nil {
		return []model.Candidate{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.id::text,
	p.owner_id,
	COALESCE(p.name, ''),
	COALESCE(p.gender, ''),
	COALESCE(p.species, ''),
	COALESCE(p.breed, ''),
	CASE
		WHEN o.last_lat IS NOT NULL AND o.last_lon IS NOT NULL
			AND a.last_lat IS NOT NULL AND a.last_lon IS NOT NULL
		THEN 6371.0 * ACOS(LEAST(1.0, GREATEST(-1.0,
			COS(RADIANS(a.last_lat)) * COS(RADIANS(o.last_lat)) * COS(RADIANS(o.last_lon) - RADIANS(a.last_lon))
			+ SIN(RADIANS(a.last_lat)) * SIN(RADIANS(o.last_lat))
		)))
		ELSE NULL
	END AS distance_km
FROM pets p
JOIN owners o ON o.id = p.owner_id
LEFT JOIN owners a ON a.id = $1
WHERE
	p.approved = TRUE
	AND p.owner_id <> $1
ORDER BY distance_km ASC NULLS LAST, p.created_at DESC, p.id ASC
LIMIT $2
`, actorID, r.limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	out := make([]model.Candidate, 0, r.limit)
	for rows.Next() {
		var rec CandidateRecord
		if err := rows.Scan(
			&rec.PetID,
			&rec.OwnerID,
			&rec.Name,
			&rec.Gender,
			&rec.Species,
			&rec.Breed,
			&rec.DistanceKM,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		candidate, ok := rec.toModel()
		if !ok {
			continue
		}
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return out, nil
}

func (rec CandidateRecord) toModel() (model.Candidate, bool) {
	id := strings.TrimSpace(rec.PetID)
	if id == "" {
		return model.Candidate{}, false
	}
	gender, ok := enums.ParseGender(rec.Gender)
	if !ok {
		return model.Candidate{}, false
	}

	candidate := model.Candidate{
		ID:      id,
		Gender:  gender,
		Name:    rec.Name,
		Species: rec.Species,
		Breed:   rec.Breed,
	}
	if rec.DistanceKM != nil {
		candidate.DistanceKM = *rec.DistanceKM
	}
	return candidate, true
}
