package grid

import "testing"

func TestLinesShape(t *testing.T) {
	for size := MinSize; size <= MaxSize; size++ {
		lines := Lines(size)
		if len(lines) != 2*size+2 {
			t.Fatalf("size %d: expected %d lines, got %d", size, 2*size+2, len(lines))
		}
		for i, line := range lines {
			if len(line) != size {
				t.Fatalf("size %d line %d: expected length %d, got %d", size, i, size, len(line))
			}
			for _, idx := range line {
				if idx < 0 || idx >= size*size {
					t.Fatalf("size %d line %d: index %d out of range", size, i, idx)
				}
			}
		}
	}
}

func TestLinesCoverEachCellOnceAsRowAndColumn(t *testing.T) {
	for size := MinSize; size <= MaxSize; size++ {
		lines := Lines(size)
		rowHits := make(map[int]int)
		colHits := make(map[int]int)
		for _, line := range lines[:size] {
			for _, idx := range line {
				rowHits[idx]++
			}
		}
		for _, line := range lines[size : 2*size] {
			for _, idx := range line {
				colHits[idx]++
			}
		}
		for idx := 0; idx < size*size; idx++ {
			if rowHits[idx] != 1 {
				t.Fatalf("size %d: cell %d appears in %d rows", size, idx, rowHits[idx])
			}
			if colHits[idx] != 1 {
				t.Fatalf("size %d: cell %d appears in %d columns", size, idx, colHits[idx])
			}
		}
	}
}

func TestLinesRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, 1, 2, 6, -3} {
		if Lines(size) != nil {
			t.Fatalf("expected nil lines for size %d", size)
		}
		if Highlights(size, nil) != nil {
			t.Fatalf("expected nil highlights for size %d", size)
		}
	}
}

func TestHighlightsTopRowOneAway(t *testing.T) {
	// 3x3, top row minus cell 2: cells 0, 1 and 2 are hot via row 0.
	states := Highlights(3, map[int]bool{0: true, 1: true})
	// Row 0 = {0,1,2} has 2/3 checked, so all three cells are hot. Every
	// other line holds at most one checked cell, so the rest stay none.
	for idx, state := range states {
		expected := None
		if idx <= 2 {
			expected = Hot
		}
		if state != expected {
			t.Fatalf("cell %d: expected %q, got %q", idx, expected, state)
		}
	}
}

func TestHighlightsTopRowComplete(t *testing.T) {
	states := Highlights(3, map[int]bool{0: true, 1: true, 2: true})
	for idx, state := range states {
		if idx <= 2 {
			if state != Complete {
				t.Fatalf("cell %d: expected complete, got %q", idx, state)
			}
			continue
		}
		// Every other line holds exactly one checked cell, so none are hot.
		if state != None {
			t.Fatalf("cell %d: expected none, got %q", idx, state)
		}
	}
}

func TestHighlightsCompleteBeatsHot(t *testing.T) {
	// Row 0 complete and column 0 one-away share cell 0; complete must win.
	states := Highlights(3, map[int]bool{0: true, 1: true, 2: true, 3: true})
	if states[0] != Complete {
		t.Fatalf("cell 0: expected complete, got %q", states[0])
	}
	// Column 0 = {0,3,6} has 2/3 checked, so 6 is hot.
	if states[6] != Hot {
		t.Fatalf("cell 6: expected hot, got %q", states[6])
	}
}

func TestHighlightsExactlyOneStatePerCell(t *testing.T) {
	for size := MinSize; size <= MaxSize; size++ {
		checked := map[int]bool{}
		for idx := 0; idx < size*size; idx += 2 {
			checked[idx] = true
		}
		states := Highlights(size, checked)
		if len(states) != size*size {
			t.Fatalf("size %d: expected %d states, got %d", size, size*size, len(states))
		}
		for idx, state := range states {
			if state != None && state != Hot && state != Complete {
				t.Fatalf("size %d cell %d: unknown state %q", size, idx, state)
			}
		}
	}
}

func TestCompletedLines(t *testing.T) {
	checked := map[int]bool{0: true, 4: true, 8: true}
	done := CompletedLines(3, checked)
	if len(done) != 1 {
		t.Fatalf("expected 1 completed line, got %d", len(done))
	}
	if done[0][0] != 0 || done[0][1] != 4 || done[0][2] != 8 {
		t.Fatalf("expected main diagonal, got %v", done[0])
	}

	if lines := CompletedLines(3, nil); len(lines) != 0 {
		t.Fatalf("expected no completed lines on empty board, got %d", len(lines))
	}
}
