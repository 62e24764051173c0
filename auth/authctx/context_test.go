package authctx

import (
	"context"
	"errors"
	"testing"
)

type identity struct {
	SubjectID string
}

func TestSetGet(t *testing.T) {
	ctx := Set(context.Background(), identity{SubjectID: "u1"})

	got, ok := Get[identity](ctx)
	if !ok || got.SubjectID != "u1" {
		t.Fatalf("expected u1, got %+v (ok=%v)", got, ok)
	}
	if _, ok := Get[*identity](ctx); ok {
		t.Fatal("expected wrong type to report not found")
	}
}

func TestGetOrError(t *testing.T) {
	if _, err := GetOrError[identity](context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}
