package engine

import "github.com/hailam/c4solve/internal/board"

// Threat counts and move orders are packed as seven 4-bit fields inside a
// uint32: field i sits at bit offset 4*i. fourBitMask isolates one field.
const fourBitMask = 0xF

// packedGet reads field i out of a packed 7x4-bit word.
func packedGet(word uint32, i int) uint32 {
	return (word >> (4 * uint(i))) & fourBitMask
}

// packedSlice reads the [start,end) fields of word as a single value
// right-aligned at bit 0.
func packedSlice(word uint32, start, end int) uint32 {
	length := end - start
	mask := uint32(1)<<(4*uint(length)) - 1
	return (word >> (4 * uint(start))) & mask
}

// packedSliceClear zeroes the [start,end) fields of word.
func packedSliceClear(word uint32, start, end int) uint32 {
	length := end - start
	mask := uint32(1)<<(4*uint(length)) - 1
	return word &^ (mask << (4 * uint(start)))
}

// CountThreats returns the number of open cells on the whole board that
// would complete a four-in-a-row for pieces: for each column it walks from
// the lowest empty cell up to (but not including) the sentinel. Callers pack
// the total into the 4-bit field of the column just played.
func CountThreats(pieces, heightMap uint64) uint32 {
	var threatCount uint32
	for col := 0; col < board.Cols; col++ {
		colMask := board.ColSlotMask << (uint(col) * board.ColBits)
		limit := colMask >> 1

		cell := heightMap & colMask
		for cell < limit {
			if board.IsWin(pieces | cell) {
				threatCount++
			}
			cell <<= 1
		}
	}
	return threatCount
}

// SortByThreats returns a move-order permutation built by insertion-sorting
// board.DefaultMoveOrder so that columns with more threats (per colThreats)
// come first; ties keep the default center-out order.
func SortByThreats(colThreats uint32) uint32 {
	moveOrder := board.DefaultMoveOrder

	for i := 0; i < board.Cols; i++ {
		currCol := packedGet(moveOrder, i)
		currThreats := packedGet(colThreats, int(currCol))

		j := i
		for j > 0 && currThreats > packedGet(colThreats, int(packedGet(moveOrder, j-1))) {
			j--
		}

		moveOrder = packedSliceClear(moveOrder, j, i+1) |
			(packedGet(moveOrder, i) << (4 * uint(j))) |
			(packedSlice(moveOrder, j, i) << (4 * uint(j+1)))
	}

	return moveOrder
}

// orderCol extracts the column to try at rank i of a packed move order.
func orderCol(order uint32, i int) int {
	return int(packedGet(order, i))
}
