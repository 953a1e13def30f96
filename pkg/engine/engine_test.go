package engine

import (
	"context"
	"reflect"
	"testing"

	"gauntlet/pkg/variant"
)

func TestFeaturesStartPosition(t *testing.T) {
	var p = variant.NewStandardPosition()
	// The start position is mirror-symmetric, so every term cancels.
	if got := Features(p); len(got) != 0 {
		t.Errorf("features = %v, want none", got)
	}
	if score := Eval(p, ScoringWeights(nil)); score != 0 {
		t.Errorf("eval = %v, want 0", score)
	}
}

func TestFeaturesCrafted(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 6, Y: 2}] = variant.Piece{Type: variant.King, Owner: variant.White}
	p.Pieces[variant.Coord{X: 5, Y: 3}] = variant.Piece{Type: variant.Pawn, Owner: variant.White}
	p.Pieces[variant.Coord{X: 6, Y: 3}] = variant.Piece{Type: variant.Pawn, Owner: variant.White}
	p.Pieces[variant.Coord{X: 7, Y: 3}] = variant.Piece{Type: variant.Pawn, Owner: variant.White}
	p.Pieces[variant.Coord{X: 1, Y: 8}] = variant.Piece{Type: variant.Rook, Owner: variant.White}
	p.Pieces[variant.Coord{X: 5, Y: 5}] = variant.Piece{Type: variant.King, Owner: variant.Black}

	var want = map[string]float64{
		PieceValueFeature(variant.Pawn): 3,
		PieceValueFeature(variant.Rook): 1,
		FeatRookBehindEnemy:             1,
		FeatRookOpenFile:                1,
		FeatKingTropism:                 6.5,
		FeatPawnShield:                  3,
		FeatKingExposed:                 -1,
		FeatCastleShelter:               2,
		FeatPawnAdvance:                 3,
		FeatPawnCentral:                 1,
		FeatPassedPawn:                  3,
		FeatPassedRank:                  3,
		FeatDevelopment:                 1,
	}
	var got = Features(p)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("features = %v, want %v", got, want)
	}
	if score := Eval(p, ScoringWeights(nil)); score != 1133 {
		t.Errorf("eval = %v, want 1133", score)
	}
}

func TestScoringWeightsOverrides(t *testing.T) {
	var w = ScoringWeights(map[string]float64{FeatPawnShield: 42})
	if w[FeatPawnShield] != 42 {
		t.Errorf("override lost: %v", w[FeatPawnShield])
	}
	if w[FeatPassedPawn] != DefaultWeights()[FeatPassedPawn] {
		t.Errorf("default clobbered: %v", w[FeatPassedPawn])
	}
	if w[PieceValueFeature(variant.Pawn)] != float64(variant.PieceValue(variant.Pawn)) {
		t.Errorf("piece value missing: %v", w[PieceValueFeature(variant.Pawn)])
	}
}

func TestMovesStartPosition(t *testing.T) {
	var p = variant.NewStandardPosition()
	var moves = Moves(p)
	if len(moves) != 55 {
		t.Errorf("got %d moves: %v", len(moves), moves)
	}
	if again := Moves(p); !reflect.DeepEqual(moves, again) {
		t.Error("move generation is not deterministic")
	}
	for _, m := range moves {
		var child = p.Clone()
		if err := child.Apply(m); err != nil {
			t.Errorf("generated move %v does not apply: %v", m, err)
		}
	}
}

func TestMovesCaptureFirst(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 4, Y: 4}] = variant.Piece{Type: variant.Rook, Owner: variant.White}
	p.Pieces[variant.Coord{X: 4, Y: 7}] = variant.Piece{Type: variant.Queen, Owner: variant.Black}
	p.Pieces[variant.Coord{X: 7, Y: 4}] = variant.Piece{Type: variant.Pawn, Owner: variant.Black}
	var moves = Moves(p)
	if len(moves) == 0 {
		t.Fatal("no moves")
	}
	if want := (variant.Coord{X: 4, Y: 7}); moves[0].To != want {
		t.Errorf("first move %v, want queen capture on %v", moves[0], want)
	}
}

func TestSliderBounded(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 0, Y: 0}] = variant.Piece{Type: variant.Rook, Owner: variant.White}
	// Alone on the board the rook's rays stop at the margin: two squares
	// in each of four directions.
	if moves := Moves(p); len(moves) != 8 {
		t.Errorf("got %d moves: %v", len(moves), moves)
	}
}

func TestHuygenMoves(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 1, Y: 1}] = variant.Piece{Type: variant.Huygen, Owner: variant.White}
	p.Pieces[variant.Coord{X: 1, Y: 5}] = variant.Piece{Type: variant.Pawn, Owner: variant.Black}
	p.Pieces[variant.Coord{X: 1, Y: 6}] = variant.Piece{Type: variant.Pawn, Owner: variant.Black}

	var targets = make(map[variant.Coord]bool)
	for _, m := range Moves(p) {
		targets[m.To] = true
	}
	// Up the file: distances 2 and 3 are open, the pawn at distance 4 sits
	// on a composite square and never blocks, the pawn at prime distance 5
	// is captured and ends the ray.
	for _, to := range []variant.Coord{{X: 1, Y: 3}, {X: 1, Y: 4}, {X: 1, Y: 6}} {
		if !targets[to] {
			t.Errorf("missing move to %v", to)
		}
	}
	for _, to := range []variant.Coord{{X: 1, Y: 5}, {X: 1, Y: 8}} {
		if targets[to] {
			t.Errorf("unexpected move to %v", to)
		}
	}
	// 15 primes up to 50 on each open ray, 3 moves on the capped one.
	if len(targets) != 48 {
		t.Errorf("got %d targets", len(targets))
	}
}

func TestRoseMoves(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 0, Y: 0}] = variant.Piece{Type: variant.Rose, Owner: variant.White}
	p.Pieces[variant.Coord{X: 1, Y: 2}] = variant.Piece{Type: variant.Pawn, Owner: variant.White}

	var targets = make(map[variant.Coord]bool)
	for _, m := range Moves(p) {
		if m.From == (variant.Coord{X: 0, Y: 0}) {
			targets[m.To] = true
		}
	}
	if targets[variant.Coord{X: 1, Y: 2}] {
		t.Error("rose landed on a friendly pawn")
	}
	// Still reachable around the other side of the circle.
	if !targets[variant.Coord{X: 2, Y: 1}] || !targets[variant.Coord{X: 3, Y: 3}] {
		t.Errorf("missing circular path targets: %v", targets)
	}
}

func TestCastlingMoves(t *testing.T) {
	var p = variant.NewStandardPosition()
	delete(p.Pieces, variant.Coord{X: 6, Y: 1})
	delete(p.Pieces, variant.Coord{X: 7, Y: 1})

	var castle = variant.Move{From: variant.Coord{X: 5, Y: 1}, To: variant.Coord{X: 7, Y: 1}}
	if !containsMove(Moves(p), castle) {
		t.Errorf("missing %v", castle)
	}

	delete(p.Rights, variant.Coord{X: 8, Y: 1})
	if containsMove(Moves(p), castle) {
		t.Errorf("castling generated without a righted partner")
	}
}

func containsMove(moves []variant.Move, m variant.Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}

func TestSelectFindsRoyalCapture(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 1, Y: 1}] = variant.Piece{Type: variant.King, Owner: variant.White}
	p.Pieces[variant.Coord{X: 5, Y: 5}] = variant.Piece{Type: variant.Queen, Owner: variant.White}
	p.Pieces[variant.Coord{X: 5, Y: 8}] = variant.Piece{Type: variant.King, Owner: variant.Black}

	var e = NewLocal(Config{Name: "test", MaxDepth: 2})
	if err := e.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	reply, err := e.Select(context.Background(), Snapshot{Initial: p}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reply.HasMove || reply.Move.To != (variant.Coord{X: 5, Y: 8}) {
		t.Errorf("reply %+v, want capture on 5,8", reply)
	}
	if !reply.HasEval || reply.Eval < MateScore-maxMatePly {
		t.Errorf("eval %v, want a winning score", reply.Eval)
	}
}

func TestSelectNoMoves(t *testing.T) {
	var p = variant.NewPosition()
	p.Pieces[variant.Coord{X: 1, Y: 2}] = variant.Piece{Type: variant.Pawn, Owner: variant.White}
	p.Pieces[variant.Coord{X: 1, Y: 3}] = variant.Piece{Type: variant.Pawn, Owner: variant.Black}

	var e = NewLocal(Config{Name: "test", MaxDepth: 2})
	reply, err := e.Select(context.Background(), Snapshot{Initial: p}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if reply.HasMove {
		t.Errorf("reply %+v, want no move", reply)
	}
	if !reply.HasEval {
		t.Error("want a static eval even without moves")
	}
}

func TestSelectDeterministic(t *testing.T) {
	var p = variant.NewStandardPosition()
	var snap = Snapshot{Initial: p}

	var first variant.Move
	for i := 0; i < 3; i++ {
		var e = NewLocal(Config{Name: "test", MaxDepth: 2})
		reply, err := e.Select(context.Background(), snap, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !reply.HasMove {
			t.Fatal("no move from the start position")
		}
		if i == 0 {
			first = reply.Move
		} else if reply.Move != first {
			t.Errorf("run %d chose %v, first run chose %v", i, reply.Move, first)
		}
	}
}

func TestSnapshotRebuild(t *testing.T) {
	var p = variant.NewStandardPosition()
	var moves = []variant.Move{
		mustParseMove(t, "5,2>5,4"),
		mustParseMove(t, "5,7>5,5"),
		mustParseMove(t, "7,1>6,3"),
	}
	var snap = Snapshot{Initial: p, Moves: moves}
	rebuilt, err := snap.Rebuild()
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt.SideToMove != variant.Black {
		t.Errorf("side to move = %v", rebuilt.SideToMove)
	}
	if got := rebuilt.Pieces[variant.Coord{X: 6, Y: 3}]; got.Type != variant.Knight {
		t.Errorf("knight missing after replay: %+v", got)
	}
	if p.Pieces[variant.Coord{X: 5, Y: 2}].Type != variant.Pawn {
		t.Error("rebuild mutated the initial position")
	}
}

func TestInitRejectsUnknownWeight(t *testing.T) {
	var e = NewLocal(Config{Name: "bad", Weights: map[string]float64{"tempo_bonus": 10}})
	if err := e.Init(context.Background()); err == nil {
		t.Error("want an error for an unknown weight name")
	}
	var ok = NewLocal(Config{Name: "good", Weights: map[string]float64{FeatPawnShield: 20}})
	if err := ok.Init(context.Background()); err != nil {
		t.Error(err)
	}
}

func mustParseMove(t *testing.T, s string) variant.Move {
	t.Helper()
	m, err := variant.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
