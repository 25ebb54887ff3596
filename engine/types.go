package engine

import "fmt"

// PieceType identifies one of the seven tetromino shapes.
type PieceType uint8

const (
	PieceNone PieceType = iota // 0: empty hold slot / no active piece
	PieceI                     // 1
	PieceO                     // 2
	PieceT                     // 3
	PieceS                     // 4
	PieceZ                     // 5
	PieceJ                     // 6
	PieceL                     // 7
)

// NumPieceTypes is the number of playable piece types.
const NumPieceTypes = 7

// AllPieces lists the playable piece types in canonical bag order.
var AllPieces = [NumPieceTypes]PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

var pieceNames = [...]string{"-", "I", "O", "T", "S", "Z", "J", "L"}

// String returns the single-letter name of the piece.
func (p PieceType) String() string {
	if int(p) < len(pieceNames) {
		return pieceNames[p]
	}
	return "?"
}

// Valid reports whether p is one of the seven playable types.
func (p PieceType) Valid() bool { return p >= PieceI && p <= PieceL }

// Color returns the board color code used for cells of this piece.
// Piece colors share the numeric value of the piece type (1–7).
func (p PieceType) Color() Cell { return Cell(p) }

// Cell is the color code stored in a board square.
type Cell uint8

const (
	CellEmpty   Cell = 0
	CellGarbage Cell = 8
)

// Point is a (column, row) pair. Rows grow downward.
type Point struct {
	Col int
	Row int
}

// Phase is the state of the active piece controller.
type Phase uint8

const (
	PhaseSpawning    Phase = iota // 0: waiting to place the next piece
	PhaseFalling                  // 1
	PhaseLockPending              // 2: grounded, lock delay running
	PhaseLocked                   // 3: transient while the lock is resolved
	PhaseGameOver                 // 4: terminal
)

var phaseNames = [...]string{"spawning", "falling", "lock_pending", "locked", "game_over"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// GameOverReason explains why a game reached its terminal state.
type GameOverReason uint8

const (
	ReasonNone        GameOverReason = iota // 0
	ReasonBlockOut                          // 1: next piece overlaps the stack at spawn
	ReasonTopOut                            // 2: incoming garbage pushed blocks past the top row
	ReasonTimeExpired                       // 3: time attack clock ran out
	ReasonGoalReached                       // 4: time attack line goal met
)

var reasonNames = [...]string{"none", "block_out", "top_out", "time_expired", "goal_reached"}

func (r GameOverReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// ItemKind is the side effect carried by an item cell in item mode.
type ItemKind uint8

const (
	ItemNone        ItemKind = iota // 0
	ItemClearRow                    // 1: removes the row the item lands in
	ItemClearColumn                 // 2: empties the column the item lands in
	ItemBomb                        // 3: empties the 3×3 area around the item
)

const numItemKinds = 3

var itemNames = [...]string{"none", "clear_row", "clear_column", "bomb"}

func (k ItemKind) String() string {
	if int(k) < len(itemNames) {
		return itemNames[k]
	}
	return fmt.Sprintf("item(%d)", uint8(k))
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// Action is a discrete player input.
type Action uint8

const (
	ActionMoveLeft  Action = iota // 0
	ActionMoveRight               // 1
	ActionSoftDrop                // 2
	ActionHardDrop                // 3
	ActionRotateCW                // 4
	ActionRotateCCW               // 5
	ActionHold                    // 6

	NumActions = 7
)

var actionNames = [NumActions]string{
	"move_left",
	"move_right",
	"soft_drop",
	"hard_drop",
	"rotate_cw",
	"rotate_ccw",
	"hold",
}

func (a Action) String() string {
	if a < NumActions {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction maps a protocol name such as "rotate_cw" to an Action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownAction)
}
