// Package grid computes winning lines and highlight states for a square
// bingo board. Everything here is pure: callers re-run the computation on
// every checked-set change instead of persisting results.
package grid

// MinSize and MaxSize bound the supported board sizes.
const (
	MinSize = 3
	MaxSize = 5
)

// Highlight is the display state of a single cell.
type Highlight string

const (
	None     Highlight = "none"
	Hot      Highlight = "hot"
	Complete Highlight = "complete"
)

// ValidSize reports whether size is a playable board size.
func ValidSize(size int) bool {
	return size >= MinSize && size <= MaxSize
}

// Lines returns every winning line for a size x size board: all rows, all
// columns, then the two main diagonals. Each line is an ordered slice of
// cell indices in [0, size*size). Returns nil for unsupported sizes.
func Lines(size int) [][]int {
	if !ValidSize(size) {
		return nil
	}
	lines := make([][]int, 0, 2*size+2)
	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}
	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}
	diag := make([]int, size)
	for i := 0; i < size; i++ {
		diag[i] = i*size + i
	}
	lines = append(lines, diag)
	anti := make([]int, size)
	for i := 0; i < size; i++ {
		anti[i] = i*size + (size - 1 - i)
	}
	return append(lines, anti)
}

// Highlights returns one highlight per cell. A cell is Complete if it sits
// on at least one fully-checked line, Hot if it sits on a line that is one
// square short, otherwise None. Complete wins when a cell qualifies for
// both through different lines.
func Highlights(size int, checked map[int]bool) []Highlight {
	if !ValidSize(size) {
		return nil
	}
	states := make([]Highlight, size*size)
	for i := range states {
		states[i] = None
	}
	for _, line := range Lines(size) {
		count := 0
		for _, idx := range line {
			if checked[idx] {
				count++
			}
		}
		switch count {
		case len(line):
			for _, idx := range line {
				states[idx] = Complete
			}
		case len(line) - 1:
			for _, idx := range line {
				if states[idx] != Complete {
					states[idx] = Hot
				}
			}
		}
	}
	return states
}

// CompletedLines returns the fully-checked lines for the board, in the
// same order Lines produces them.
func CompletedLines(size int, checked map[int]bool) [][]int {
	var done [][]int
	for _, line := range Lines(size) {
		full := true
		for _, idx := range line {
			if !checked[idx] {
				full = false
				break
			}
		}
		if full {
			done = append(done, line)
		}
	}
	return done
}
