package services_test

import (
	"context"
	"testing"

	"chmatch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithRow(ctx, 42)
	ctx = services.WithTier(ctx, "primary_name")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if row, ok := services.RowFromContext(ctx); !ok || row != 42 {
		t.Fatalf("unexpected row: %v %v", row, ok)
	}
	if tier, ok := services.TierFromContext(ctx); !ok || tier != "primary_name" {
		t.Fatalf("unexpected tier: %v %v", tier, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestTierBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTier(ctx, "")
	if _, ok := services.TierFromContext(ctx); ok {
		t.Fatal("expected no tier value")
	}
}
