package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/internal/gameapi"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

func (c *Controller) fail(op string, err error) {
	c.log.Warn("game_service_call_failed", zap.String("op", op), zap.Error(err))
	c.SetNotice(Notice{Kind: NoticeError, Text: c.errorText(op, err)})
}

func (c *Controller) failMove(from, to chessdto.Coord, err error) {
	var se *gameapi.StatusError
	if errors.As(err, &se) {
		c.log.Warn("move_rejected", zap.Stringer("from", from), zap.Stringer("to", to), zap.Int("status", se.Code), zap.String("body", se.Body))
		c.SetNotice(Notice{Kind: NoticeError, Text: c.msgs.Text("notice.rejected_move", map[string]any{
			"From": squareName(from), "To": squareName(to), "Code": se.Code,
		})})
		return
	}
	c.fail("submit the move", err)
}

func (c *Controller) errorText(op string, err error) string {
	var se *gameapi.StatusError
	switch {
	case errors.As(err, &se):
		return c.msgs.Text("notice.status", map[string]any{"Op": op, "Code": se.Code})
	case errors.Is(err, gameapi.ErrMalformed):
		return c.msgs.Text("notice.malformed", map[string]any{"Op": op})
	case errors.Is(err, gameapi.ErrTransport):
		return c.msgs.Text("notice.transport", map[string]any{"Op": op})
	default:
		return err.Error()
	}
}

// squareName renders a coordinate as a chess square such as e2.
func squareName(c chessdto.Coord) string {
	if !c.Valid() {
		return c.String()
	}
	return board.FileLabel(c.X) + string(rune('1'+c.Y))
}
