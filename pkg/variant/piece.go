package variant

// Color of a piece owner or the side to move.
type Color int8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// PieceType covers the extended fairy set played on the unbounded board.
type PieceType int8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
	Guard
	Hawk
	Chancellor
	Archbishop
	Amazon
	Camel
	Giraffe
	Zebra
	Knightrider
	Centaur
	RoyalCentaur
	RoyalQueen
	Huygen
	Rose
)

var pieceNames = [...]string{
	NoPiece:      "",
	Pawn:         "pawn",
	Knight:       "knight",
	Bishop:       "bishop",
	Rook:         "rook",
	Queen:        "queen",
	King:         "king",
	Guard:        "guard",
	Hawk:         "hawk",
	Chancellor:   "chancellor",
	Archbishop:   "archbishop",
	Amazon:       "amazon",
	Camel:        "camel",
	Giraffe:      "giraffe",
	Zebra:        "zebra",
	Knightrider:  "knightrider",
	Centaur:      "centaur",
	RoyalCentaur: "royalcentaur",
	RoyalQueen:   "royalqueen",
	Huygen:       "huygen",
	Rose:         "rose",
}

func (pt PieceType) String() string {
	if int(pt) < 0 || int(pt) >= len(pieceNames) {
		return ""
	}
	return pieceNames[pt]
}

// ParsePieceType accepts full names and the single-letter promotion
// abbreviations used in move notation.
func ParsePieceType(s string) (PieceType, bool) {
	switch s {
	case "q":
		return Queen, true
	case "r":
		return Rook, true
	case "b":
		return Bishop, true
	case "n":
		return Knight, true
	}
	for pt, name := range pieceNames {
		if name != "" && name == s {
			return PieceType(pt), true
		}
	}
	return NoPiece, false
}

// Royal pieces end the game when captured.
func (pt PieceType) IsRoyal() bool {
	return pt == King || pt == RoyalQueen || pt == RoyalCentaur
}

var pieceValues = [...]int{
	Pawn:         100,
	Knight:       280,
	Bishop:       340,
	Rook:         620,
	Queen:        1100,
	King:         280,
	Guard:        280,
	Hawk:         600,
	Chancellor:   1000,
	Archbishop:   900,
	Amazon:       1400,
	Camel:        270,
	Giraffe:      260,
	Zebra:        260,
	Knightrider:  700,
	Centaur:      550,
	RoyalCentaur: 620,
	RoyalQueen:   1100,
	Huygen:       355,
	Rose:         450,
}

// PieceValue returns the fixed material value in centipawns.
func PieceValue(pt PieceType) int {
	if int(pt) <= 0 || int(pt) >= len(pieceValues) {
		return 0
	}
	return pieceValues[pt]
}

// Piece is a typed occupant of one square. Coordinates live in the
// Position's map key.
type Piece struct {
	Type  PieceType
	Owner Color
}
