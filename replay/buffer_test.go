package replay

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func exp(tag float64) Experience {
	return Experience{State: mat.NewVecDense(1, []float64{tag}), Action: int(tag)}
}

func TestPushEvictsOldest(t *testing.T) {
	b := New(3, rand.New(rand.NewSource(1)))
	for i := 0; i < 5; i++ {
		b.Push(exp(float64(i)))
	}
	if got := b.Size(); got != 3 {
		t.Fatalf("Size() = %d, want 3", got)
	}
	all, err := b.Sample(3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	seen := map[int]bool{}
	for _, e := range all {
		seen[e.Action] = true
	}
	for _, want := range []int{2, 3, 4} {
		if !seen[want] {
			t.Errorf("expected surviving item %d among last 3 pushed, got %v", want, seen)
		}
	}
}

func TestSampleDistinctAndInsufficient(t *testing.T) {
	b := New(10, rand.New(rand.NewSource(2)))
	for i := 0; i < 5; i++ {
		b.Push(exp(float64(i)))
	}
	if _, err := b.Sample(6); err == nil || !IsInsufficientSamples(err) {
		t.Fatalf("Sample(6) with size 5 = %v, want IsInsufficientSamples", err)
	}

	got, err := b.Sample(5)
	if err != nil {
		t.Fatalf("Sample(5): %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len(Sample(5)) = %d, want 5", len(got))
	}
	seen := map[int]bool{}
	for _, e := range got {
		if seen[e.Action] {
			t.Errorf("duplicate action %d in sample", e.Action)
		}
		seen[e.Action] = true
	}
}

func TestClear(t *testing.T) {
	b := New(4, rand.New(rand.NewSource(3)))
	b.Push(exp(1))
	b.Clear()
	if b.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", b.Size())
	}
}

func TestItemsOldestFirstSurvivesWraparound(t *testing.T) {
	b := New(3, rand.New(rand.NewSource(4)))
	for i := 0; i < 5; i++ {
		b.Push(exp(float64(i)))
	}
	items := b.Items()
	want := []int{2, 3, 4}
	if len(items) != len(want) {
		t.Fatalf("len(Items()) = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Action != w {
			t.Errorf("Items()[%d].Action = %d, want %d", i, items[i].Action, w)
		}
	}
}

func TestLoadItemsRoundTrips(t *testing.T) {
	src := New(5, rand.New(rand.NewSource(5)))
	for i := 0; i < 4; i++ {
		src.Push(exp(float64(i)))
	}
	saved := src.Items()

	dst := New(5, rand.New(rand.NewSource(6)))
	dst.Push(exp(99)) // pre-existing content must not survive LoadItems
	dst.LoadItems(saved)

	if dst.Size() != len(saved) {
		t.Fatalf("Size() after LoadItems = %d, want %d", dst.Size(), len(saved))
	}
	got := dst.Items()
	for i, e := range got {
		if e.Action != saved[i].Action {
			t.Errorf("Items()[%d].Action = %d, want %d", i, e.Action, saved[i].Action)
		}
	}
}

func TestReseedReplacesSamplingRNG(t *testing.T) {
	b := New(5, rand.New(rand.NewSource(7)))
	for i := 0; i < 5; i++ {
		b.Push(exp(float64(i)))
	}
	b.Reseed(rand.New(rand.NewSource(42)))
	first, err := b.Sample(5)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	b2 := New(5, rand.New(rand.NewSource(7)))
	for i := 0; i < 5; i++ {
		b2.Push(exp(float64(i)))
	}
	b2.Reseed(rand.New(rand.NewSource(42)))
	second, err := b2.Sample(5)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	for i := range first {
		if first[i].Action != second[i].Action {
			t.Fatalf("Reseed with the same source did not reproduce the same sample order at index %d: %d != %d", i, first[i].Action, second[i].Action)
		}
	}
}
