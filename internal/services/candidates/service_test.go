package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
)

func TestLoadCapsFreePool(t *testing.T) {
	source := sourceStub{list: []model.Candidate{
		{ID: "a", Gender: enums.GenderMale},
		{ID: "b", Gender: enums.GenderFemale},
		{ID: "a", Gender: enums.GenderMale},
		{ID: " ", Gender: enums.GenderMale},
		{ID: "c", Gender: enums.GenderFemale},
	}}
	svc := NewService(source, Config{FreePoolSize: 2})

	free, err := svc.Load(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("load free: %v", err)
	}
	if len(free) != 2 || free[0].ID != "a" || free[1].ID != "b" {
		t.Fatalf("unexpected free pool: %+v", free)
	}

	full, err := svc.Load(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("load full: %v", err)
	}
	if len(full) != 3 || full[2].ID != "c" {
		t.Fatalf("unexpected full pool: %+v", full)
	}
}

func TestLoadUncappedWhenFreePoolZero(t *testing.T) {
	svc := NewService(sourceStub{list: []model.Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}}}, Config{})
	list, err := svc.Load(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected uncapped pool, got %d", len(list))
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := NewService(sourceStub{}, Config{}).Load(context.Background(), 0, true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	sourceErr := errors.New("db down")
	if _, err := NewService(sourceStub{err: sourceErr}, Config{}).Load(context.Background(), 1, true); !errors.Is(err, sourceErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestStaticSource(t *testing.T) {
	source, err := NewStaticSource([]StaticEntry{
		{ID: "p1", Gender: "female", Name: "Luna", Species: "cat"},
		{ID: "p2", Gender: "m", Name: "Rex", Species: "dog", DistanceKM: 2.5},
	})
	if err != nil {
		t.Fatalf("new static source: %v", err)
	}

	list, err := source.List(context.Background(), 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[1].Gender != enums.GenderMale || list[1].DistanceKM != 2.5 {
		t.Fatalf("unexpected list: %+v", list)
	}

	list[0].ID = "mutated"
	again, _ := source.List(context.Background(), 42)
	if again[0].ID != "p1" {
		t.Fatalf("static source leaked its backing slice")
	}

	if _, err := NewStaticSource([]StaticEntry{{ID: "x", Gender: "robot"}}); err == nil {
		t.Fatalf("expected invalid gender error")
	}
	if _, err := NewStaticSource([]StaticEntry{{Gender: "male"}}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

type sourceStub struct {
	list []model.Candidate
	err  error
}

func (s sourceStub) List(context.Context, int64) ([]model.Candidate, error) {
	return s.list, s.err
}
