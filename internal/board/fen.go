package board

import (
	"errors"
	"fmt"
)

// Board text encoding: 7 rows of 7 characters, top row first. 'X' marks the
// side to move in the input frame, 'O' the opponent, a space an empty cell.
const (
	currChar = 'X'
	oppChar  = 'O'
	emptyCh  = ' '
)

// ErrBadBoardText is returned by DecodeBoardText for malformed input: wrong
// row/column counts or an unrecognized character. Cells above the first gap
// in a column are ignored, not rejected.
var ErrBadBoardText = errors.New("board: malformed board text")

// DecodeBoardText parses rows (length Rows, each of length Cols, top row
// first) into a State. After decoding, if the total piece count is odd, curr
// and opp are swapped so curr_pieces always names the side to move.
func DecodeBoardText(rows []string) (State, error) {
	if len(rows) != Rows {
		return State{}, fmt.Errorf("%w: expected %d rows, got %d", ErrBadBoardText, Rows, len(rows))
	}
	for _, row := range rows {
		if len(row) != Cols {
			return State{}, fmt.Errorf("%w: expected %d columns, got %d", ErrBadBoardText, Cols, len(row))
		}
	}

	var s State
	for c := 0; c < Cols; c++ {
		cell := uint64(1) << colShift(c)
	column:
		for r := 0; r < Rows; r++ {
			ch := rows[Rows-1-r][c]
			switch ch {
			case currChar:
				s.Curr |= cell
				s.MovesMade++
			case oppChar:
				s.Opp |= cell
				s.MovesMade++
			case emptyCh:
				// Gravity assumption: the first empty cell scanning
				// bottom-up marks the top of the column. Anything above it
				// in the input is not consulted.
				break column
			default:
				return State{}, fmt.Errorf("%w: unrecognized character %q", ErrBadBoardText, ch)
			}
			cell <<= 1
		}
		s.Height |= cell
	}

	if s.MovesMade&1 == 1 {
		s.Curr, s.Opp = s.Opp, s.Curr
	}

	return s, nil
}

// EncodeBoardText renders s back to the board text format, top row first.
// It is a diagnostic/test helper: the search only consumes board text, it
// never needs to produce it.
func EncodeBoardText(s State) []string {
	rows := make([]string, Rows)
	for r := Rows - 1; r >= 0; r-- {
		cell := uint64(1) << uint(r)
		buf := make([]byte, Cols)
		for c := 0; c < Cols; c++ {
			switch {
			case s.Curr&cell != 0:
				buf[c] = currChar
			case s.Opp&cell != 0:
				buf[c] = oppChar
			default:
				buf[c] = emptyCh
			}
			cell <<= ColBits
		}
		rows[Rows-1-r] = string(buf)
	}
	return rows
}
