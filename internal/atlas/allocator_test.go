package atlas

import "testing"

func overlaps(a, b Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestAllocator_NoOverlap(t *testing.T) {
	a := NewAllocator(128, 128, 1)
	var got []Rect
	sizes := [][2]int{{10, 12}, {30, 8}, {5, 5}, {40, 20}, {12, 12}, {60, 30}, {7, 9}}
	for _, s := range sizes {
		r, ok := a.Allocate(s[0], s[1])
		if !ok {
			t.Fatalf("Allocate(%d, %d) failed", s[0], s[1])
		}
		if r.W != s[0] || r.H != s[1] {
			t.Errorf("Allocate(%d, %d) = %v, wrong size", s[0], s[1], r)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > 128 || r.Y+r.H > 128 {
			t.Errorf("Allocate(%d, %d) = %v, out of bounds", s[0], s[1], r)
		}
		for _, prev := range got {
			if overlaps(r, prev) {
				t.Errorf("%v overlaps %v", r, prev)
			}
		}
		got = append(got, r)
	}
	if a.AllocCount() != len(sizes) {
		t.Errorf("AllocCount() = %d, want %d", a.AllocCount(), len(sizes))
	}
}

func TestAllocator_InvalidSize(t *testing.T) {
	a := NewAllocator(64, 64, 0)
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"too wide", 65, 10},
		{"too tall", 10, 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := a.Allocate(tt.w, tt.h); ok {
				t.Errorf("Allocate(%d, %d) succeeded, want failure", tt.w, tt.h)
			}
		})
	}
}

func TestAllocator_Full(t *testing.T) {
	a := NewAllocator(32, 32, 0)
	for i := range 4 {
		if _, ok := a.Allocate(16, 16); !ok {
			t.Fatalf("Allocate #%d failed", i)
		}
	}
	if _, ok := a.Allocate(16, 16); ok {
		t.Error("Allocate on full area succeeded")
	}
	if got := a.Utilization(); got != 1 {
		t.Errorf("Utilization() = %v, want 1", got)
	}
}

func TestAllocator_DeallocateReuse(t *testing.T) {
	a := NewAllocator(32, 32, 0)
	var rects []Rect
	for range 4 {
		r, _ := a.Allocate(16, 16)
		rects = append(rects, r)
	}
	if !a.Deallocate(rects[1]) {
		t.Fatal("Deallocate() = false")
	}
	r, ok := a.Allocate(16, 16)
	if !ok {
		t.Fatal("Allocate after Deallocate failed")
	}
	if r != rects[1] {
		t.Errorf("Allocate() = %v, want reused %v", r, rects[1])
	}
	if a.Deallocate(Rect{X: 0, Y: 5, W: 1, H: 1}) {
		t.Error("Deallocate(unknown shelf) = true")
	}
}

func TestAllocator_MergeFreeSpans(t *testing.T) {
	a := NewAllocator(32, 16, 0)
	var rects []Rect
	for range 4 {
		r, _ := a.Allocate(8, 16)
		rects = append(rects, r)
	}
	// free the two middle ones, in reverse order
	a.Deallocate(rects[2])
	a.Deallocate(rects[1])

	r, ok := a.Allocate(16, 16)
	if !ok {
		t.Fatal("Allocate(16, 16) into merged span failed")
	}
	if r.X != 8 {
		t.Errorf("Allocate(16, 16).X = %d, want 8", r.X)
	}
}

func TestAllocator_EmptyTrailingShelfDropped(t *testing.T) {
	a := NewAllocator(32, 32, 0)
	a.Allocate(32, 8)
	tall, _ := a.Allocate(32, 24)
	a.Deallocate(tall)

	// The freed 24px shelf is gone, so a 20px row fits below the first.
	r, ok := a.Allocate(32, 20)
	if !ok {
		t.Fatal("Allocate(32, 20) failed")
	}
	if r.Y != 8 {
		t.Errorf("Allocate(32, 20).Y = %d, want 8", r.Y)
	}
}

func TestAllocator_GrowKeepsCoordinates(t *testing.T) {
	a := NewAllocator(32, 32, 0)
	var before []Rect
	for range 4 {
		r, _ := a.Allocate(16, 16)
		before = append(before, r)
	}
	if _, ok := a.Allocate(16, 16); ok {
		t.Fatal("expected full allocator")
	}

	a.Grow(64, 64)
	if w, h := a.Size(); w != 64 || h != 64 {
		t.Errorf("Size() = %d, %d, want 64, 64", w, h)
	}
	r, ok := a.Allocate(16, 16)
	if !ok {
		t.Fatal("Allocate after Grow failed")
	}
	for _, b := range before {
		if overlaps(r, b) {
			t.Errorf("new %v overlaps existing %v", r, b)
		}
	}
	// Existing shelves gained width.
	if r.Y != 0 || r.X != 32 {
		t.Errorf("Allocate after Grow = %v, want on first shelf at x=32", r)
	}
}
