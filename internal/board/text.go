package board

import "strings"

const files = "abcdefgh"

// RenderText draws the grid as plain text, one line per rank. Selection is shown
// as [x], a candidate as (x) or * on an empty square, and empty squares as '.'.
func RenderText(g Grid) string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		y := Size - 1 - row
		sb.WriteByte(byte('1' + y))
		sb.WriteByte(' ')
		for x := 0; x < Size; x++ {
			sb.WriteString(cellText(g[row][x]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for x := 0; x < Size; x++ {
		sb.WriteByte(' ')
		sb.WriteByte(files[x])
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func cellText(c Cell) string {
	inner := c.Glyph
	if inner == "" {
		inner = "."
		if c.Candidate {
			inner = "*"
		}
	}
	switch {
	case c.Selected:
		return "[" + inner + "]"
	case c.Candidate && c.Figure != nil:
		return "(" + inner + ")"
	default:
		return " " + inner + " "
	}
}

// FileLabel returns the chess file letter for column x.
func FileLabel(x int) string {
	if x < 0 || x >= Size {
		return ""
	}
	return files[x : x+1]
}
