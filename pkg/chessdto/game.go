package chessdto

// Side identifies one of the two players. The service encodes it as a lower-case colour.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// Kind is the category of a figure as named by the game service.
type Kind string

const (
	Bishop Kind = "Bishop"
	King   Kind = "King"
	Queen  Kind = "Queen"
	Pawn   Kind = "Pawn"
	Rook   Kind = "Rook"
	Knight Kind = "Knight"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{King, Queen, Rook, Bishop, Knight, Pawn}

// Game is the authoritative game record returned by the service.
type Game struct {
	ID        int64  `json:"id"`
	InTurn    string `json:"inTurn"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Stalemate bool   `json:"stalemate"`
}

// Finished reports whether the service flagged a terminal position.
func (g *Game) Finished() bool {
	return g != nil && (g.Checkmate || g.Stalemate)
}

// Figure is one piece on the board. Coordinates are zero based, (0,0) is the
// bottom-left square from white's point of view.
type Figure struct {
	ID        int64 `json:"id"`
	PositionX int   `json:"positionX"`
	PositionY int   `json:"positionY"`
	Colour    Side  `json:"colour"`
	Name      Kind  `json:"name"`
}

// Coord returns the square the figure stands on.
func (f Figure) Coord() Coord { return Coord{X: f.PositionX, Y: f.PositionY} }

// ErrorBody is the JSON error envelope used by the development service.
type ErrorBody struct {
	Error string `json:"error"`
}
