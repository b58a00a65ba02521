// Property-based tests for the pure parts of consumption, undo and the
// leaderboard.
package service

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"

	"bimi-ledger/internal/apperrors"
	"bimi-ledger/internal/model"
)

func drawItems(t *rapid.T) []model.ConsumeItem {
	n := rapid.IntRange(1, 30).Draw(t, "numItems")
	items := make([]model.ConsumeItem, n)
	for i := range items {
		items[i] = model.ConsumeItem{
			DrinkID:  rapid.Int64Range(1, 5).Draw(t, "drinkID"),
			Quantity: rapid.Int64Range(1, 1000).Draw(t, "quantity"),
		}
	}
	return items
}

// TestCoalesceProperty tests that merged items keep per-drink totals,
// have unique drink ids and preserve first-seen order.
func TestCoalesceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := drawItems(t)

		merged, err := Coalesce(items)
		if err != nil {
			t.Fatalf("Coalesce failed: %v", err)
		}

		want := make(map[int64]int64)
		var order []int64
		for _, item := range items {
			if _, ok := want[item.DrinkID]; !ok {
				order = append(order, item.DrinkID)
			}
			want[item.DrinkID] += item.Quantity
		}

		if len(merged) != len(order) {
			t.Fatalf("Expected %d merged items, got %d", len(order), len(merged))
		}
		for i, item := range merged {
			if item.DrinkID != order[i] {
				t.Fatalf("Item %d: expected drink %d, got %d", i, order[i], item.DrinkID)
			}
			if item.Quantity != want[item.DrinkID] {
				t.Fatalf("Drink %d: expected quantity %d, got %d", item.DrinkID, want[item.DrinkID], item.Quantity)
			}
		}
	})
}

// TestCoalesceOverflowProperty tests that quantities whose sum leaves the
// int64 range are rejected as invalid input instead of wrapping.
func TestCoalesceOverflowProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := rapid.Int64Range(1, math.MaxInt64).Draw(t, "first")
		second := rapid.Int64Range(math.MaxInt64-first+1, math.MaxInt64).Draw(t, "second")
		items := []model.ConsumeItem{{DrinkID: 1, Quantity: first}, {DrinkID: 1, Quantity: second}}

		merged, err := Coalesce(items)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("Expected invalid input, got %v (merged %v)", err, merged)
		}
	})
}

// TestConsumeStockProperty tests that full bottles never go negative and
// empties grow by the consumed quantity.
func TestConsumeStockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		full := rapid.Int64Range(0, 10000).Draw(t, "full")
		empty := rapid.Int64Range(0, 10000).Draw(t, "empty")
		q := rapid.Int64Range(1, 10000).Draw(t, "quantity")

		newFull, newEmpty := ConsumeStock(full, empty, q)

		if newFull < 0 {
			t.Fatalf("Full bottles went negative: %d", newFull)
		}
		if newEmpty != empty+q {
			t.Fatalf("Expected %d empties, got %d", empty+q, newEmpty)
		}
		if q <= full && newFull+newEmpty != full+empty {
			t.Fatalf("Bottle total changed without clamping: %d -> %d", full+empty, newFull+newEmpty)
		}
	})
}

// TestRestoreStockProperty tests that undo restores the exact state when
// the consumption did not clamp.
func TestRestoreStockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		full := rapid.Int64Range(1, 10000).Draw(t, "full")
		empty := rapid.Int64Range(0, 10000).Draw(t, "empty")
		q := rapid.Int64Range(1, full).Draw(t, "quantity")

		f, e := ConsumeStock(full, empty, q)
		f, e = RestoreStock(f, e, q)

		if f != full || e != empty {
			t.Fatalf("Expected (%d, %d) after undo, got (%d, %d)", full, empty, f, e)
		}
	})
}

// TestKingsProperty tests that every drink name has exactly one king with
// the maximum total, ties going to the smallest account name.
func TestKingsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		accounts := []string{"Max", "Noob", "Testa", "alice"}
		drinks := []string{"Cola", "Fanta", "Mate"}

		seen := make(map[[2]string]bool)
		var totals []model.King
		n := rapid.IntRange(0, 12).Draw(t, "numTotals")
		for range n {
			a := rapid.SampledFrom(accounts).Draw(t, "account")
			d := rapid.SampledFrom(drinks).Draw(t, "drink")
			if seen[[2]string{a, d}] {
				continue
			}
			seen[[2]string{a, d}] = true
			totals = append(totals, model.King{
				AccountName: a,
				DrinkName:   d,
				Quaffed:     rapid.Int64Range(0, 50).Draw(t, "quaffed"),
			})
		}

		kings := Kings(totals)

		byDrink := make(map[string]model.King)
		for _, k := range kings {
			if _, dup := byDrink[k.DrinkName]; dup {
				t.Fatalf("Drink %s has more than one king", k.DrinkName)
			}
			byDrink[k.DrinkName] = k
		}
		for _, total := range totals {
			king, ok := byDrink[total.DrinkName]
			if !ok {
				t.Fatalf("Drink %s has no king", total.DrinkName)
			}
			if total.Quaffed > king.Quaffed ||
				(total.Quaffed == king.Quaffed && total.AccountName < king.AccountName) {
				t.Fatalf("%s beats king %s for %s", total.AccountName, king.AccountName, total.DrinkName)
			}
		}

		for i := 1; i < len(kings); i++ {
			prev, cur := kings[i-1], kings[i]
			if prev.AccountName > cur.AccountName ||
				(prev.AccountName == cur.AccountName && prev.DrinkName > cur.DrinkName) {
				t.Fatalf("Kings not ordered: %v", kings)
			}
		}
	})
}
