package chessdto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const BoardSize = 8

// Coord is a board square. It is written as {"x":..,"y":..} and read from either
// that object form or a two element [x, y] array.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

func (c *Coord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []int
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("coordinate pair must have 2 elements, got %d", len(pair))
		}
		c.X, c.Y = pair[0], pair[1]
		return nil
	}
	type plain Coord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Coord(p)
	return nil
}

// CoordPairs is a list of coordinates encoded as [[x,y],...].
type CoordPairs []Coord

func (p CoordPairs) MarshalJSON() ([]byte, error) {
	out := make([][2]int, 0, len(p))
	for _, c := range p {
		out = append(out, [2]int{c.X, c.Y})
	}
	return json.Marshal(out)
}

// Contains reports whether c is in the list.
func (p CoordPairs) Contains(c Coord) bool {
	for _, v := range p {
		if v == c {
			return true
		}
	}
	return false
}
