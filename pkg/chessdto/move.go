package chessdto

// MoveRequest is the PATCH /game/{id} body.
type MoveRequest struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

// FigureMoves is the GET /game/{id}/figures/{figureId} response.
type FigureMoves struct {
	ID         int64      `json:"id,omitempty"`
	ValidMoves CoordPairs `json:"validMoves"`
}
