package recur_test

import (
	"context"
	"testing"

	"github.com/xraph/recur"
	settlemem "github.com/xraph/recur/settle/memory"
	storemem "github.com/xraph/recur/store/memory"
)

// TestDocumentationExamples verifies that the examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Quick Start example from the package documentation
	t.Run("QuickStartExample", func(t *testing.T) {
		// Host collaborators: a settlement bank and a height clock.
		bank := settlemem.New()
		height := uint64(1)
		clock := recur.HeightFunc(func(context.Context) (uint64, error) {
			return height, nil
		})

		// Create the engine (memory store for demo, use PostgreSQL in
		// production).
		engine := recur.New(storemem.New(), bank, clock, "admin",
			recur.WithRate(30_000),
		)

		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		// Alice subscribes to Bob: one million base units every 144
		// heights.
		sub, err := engine.CreateSubscription(ctx, "alice", "bob", 1_000_000, 144)
		if err != nil {
			t.Fatal(err)
		}

		// Once the due height passes, anyone may trigger the payment.
		bank.Deposit("alice", 10_000)
		height = sub.NextDue
		receipt, err := engine.Pay(ctx, sub.ID)
		if err != nil {
			t.Fatal(err)
		}
		if receipt.Amount != 300 {
			t.Fatalf("settlement = %d, want 300", receipt.Amount)
		}
	})

	// Pricing preview without touching any subscription.
	t.Run("PreviewExample", func(t *testing.T) {
		quote, err := recur.Price(1_000_000, 30_000)
		if err != nil {
			t.Fatal(err)
		}
		if quote.Fee+quote.Net != quote.Amount {
			t.Fatalf("quote does not reconcile: %+v", quote)
		}
	})

	// Human-readable rate parsing.
	t.Run("RateParsingExample", func(t *testing.T) {
		rate, err := recur.ParseRate("0.0003")
		if err != nil {
			t.Fatal(err)
		}
		if rate != 30_000 {
			t.Fatalf("rate = %d, want 30000", rate)
		}
	})
}
