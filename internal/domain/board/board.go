// Package board implements the Connect-Four move engine. A board is a
// string of ASCII column digits in play order; the grid is never stored,
// it is replayed from the move sequence on every check.
package board

import (
	"akabo/internal/errors"
)

type Rules struct {
	Rows    int
	Cols    int
	Connect int
}

var Default = Rules{Rows: 6, Cols: 7, Connect: 4}

type Outcome int

const (
	OutcomeMoveOne Outcome = iota // no win, player one to move
	OutcomeMoveTwo
	OutcomeWinOne
	OutcomeWinTwo
	OutcomeDraw
)

type square int

const (
	empty square = iota
	playerOne
	playerTwo
)

// IsLegal reports whether dropping into col is allowed: the column must be
// in range and not already hold Rows moves.
func (ru Rules) IsLegal(board string, col int) bool {
	if col < 0 || col >= ru.Cols {
		return false
	}
	return ru.columnCount(board, col) < ru.Rows
}

// Apply appends col to the move sequence. The caller is expected to have
// checked legality; an illegal column yields ErrIllegalMove and the board
// is returned unchanged.
func (ru Rules) Apply(board string, col int) (string, error) {
	if !ru.IsLegal(board, col) {
		return board, errors.ErrIllegalMove
	}
	return board + string(rune('0'+col)), nil
}

// Outcome replays the move sequence and classifies the position: a win for
// either player, a draw on a full grid, or whose move is pending (even
// length means player one). The grid is scanned row-major with a sliding
// window per direction, in the order horizontal, vertical, diagonal
// up-right, diagonal down-right.
func (ru Rules) Outcome(board string) Outcome {
	grid := ru.replay(board)

	dirs := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal up-right
		{-1, 1}, // diagonal down-right
	}
	for _, d := range dirs {
		if o, won := ru.scan(grid, d[0], d[1]); won {
			return o
		}
	}

	if len(board) >= ru.Rows*ru.Cols {
		return OutcomeDraw
	}
	if len(board)%2 == 1 {
		return OutcomeMoveTwo
	}
	return OutcomeMoveOne
}

func (ru Rules) columnCount(board string, col int) int {
	n := 0
	for _, c := range board {
		if int(c-'0') == col {
			n++
		}
	}
	return n
}

// replay builds the grid, row 0 at the bottom. Each move lands on top of
// the prior moves in its column; even-indexed moves belong to player one.
func (ru Rules) replay(board string) [][]square {
	grid := make([][]square, ru.Rows)
	for r := range grid {
		grid[r] = make([]square, ru.Cols)
	}
	height := make([]int, ru.Cols)
	for i, c := range board {
		col := int(c - '0')
		if col < 0 || col >= ru.Cols || height[col] >= ru.Rows {
			continue
		}
		token := playerOne
		if i%2 == 1 {
			token = playerTwo
		}
		grid[height[col]][col] = token
		height[col]++
	}
	return grid
}

// scan walks every window of length Connect along direction (dr,dc) and
// returns the first win found in row-major order.
func (ru Rules) scan(grid [][]square, dr, dc int) (Outcome, bool) {
	for r := 0; r < ru.Rows; r++ {
		for c := 0; c < ru.Cols; c++ {
			last := r + dr*(ru.Connect-1)
			if last < 0 || last >= ru.Rows || c+dc*(ru.Connect-1) >= ru.Cols {
				continue
			}
			token := grid[r][c]
			if token == empty {
				continue
			}
			won := true
			for d := 1; d < ru.Connect; d++ {
				if grid[r+dr*d][c+dc*d] != token {
					won = false
					break
				}
			}
			if won {
				if token == playerOne {
					return OutcomeWinOne, true
				}
				return OutcomeWinTwo, true
			}
		}
	}
	return OutcomeMoveOne, false
}
