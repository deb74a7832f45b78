package model

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

func sq(t *testing.T, s string) chess.Position {
	t.Helper()
	p, err := chess.ParsePosition(s)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", s, err)
	}
	return p
}

func mv(t *testing.T, from, to string) Move {
	t.Helper()
	return Move{From: sq(t, from), To: sq(t, to)}
}

func activeGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1")
	if _, err := g.AddPlayer("alice"); err != nil {
		t.Fatalf("AddPlayer(alice): %v", err)
	}
	if _, err := g.AddPlayer("bob"); err != nil {
		t.Fatalf("AddPlayer(bob): %v", err)
	}
	return g
}

func TestAddPlayerSeats(t *testing.T) {
	g := NewGame("g1")

	color, err := g.AddPlayer("alice")
	if err != nil || color != chess.White {
		t.Fatalf("first player got (%v, %v), want white", color, err)
	}
	if g.GetState().Status != StatusWaiting {
		t.Errorf("game with one player should be waiting")
	}

	color, err = g.AddPlayer("bob")
	if err != nil || color != chess.Black {
		t.Fatalf("second player got (%v, %v), want black", color, err)
	}
	if g.GetState().Status != StatusActive {
		t.Errorf("game with two players should be active")
	}

	color, err = g.AddPlayer("alice")
	if err != nil || color != chess.White {
		t.Errorf("rejoin got (%v, %v), want white", color, err)
	}

	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Errorf("third player error = %v, want ErrGameFull", err)
	}
}

func TestMakeMoveEnforcesTurns(t *testing.T) {
	g := activeGame(t)

	tests := []struct {
		name   string
		player string
		move   Move
		want   error
	}{
		{"black cannot open", "bob", mv(t, "e7", "e5"), ErrNotYourTurn},
		{"spectator cannot move", "carol", mv(t, "e2", "e4"), ErrNotInGame},
		{"white cannot move black pieces", "alice", mv(t, "e7", "e5"), ErrIllegalMove},
		{"illegal geometry", "alice", mv(t, "e2", "e5"), ErrIllegalMove},
		{"out of range", "alice", Move{From: chess.Position{Row: 6, Col: 4}, To: chess.Position{Row: 9, Col: 4}}, chess.ErrOutOfRange},
		{"white opens", "alice", mv(t, "e2", "e4"), nil},
		{"white cannot move twice", "alice", mv(t, "d2", "d4"), ErrNotYourTurn},
		{"black replies", "bob", mv(t, "e7", "e5"), nil},
	}
	for _, tt := range tests {
		err := g.MakeMove(tt.player, tt.move)
		if tt.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}

	state := g.GetState()
	if state.ToMove != chess.White {
		t.Errorf("ToMove = %s, want white", state.ToMove)
	}
	if state.MoveCount != 2 {
		t.Errorf("MoveCount = %d, want 2", state.MoveCount)
	}
	want := &Ply{Move: mv(t, "e7", "e5"), Piece: chess.Piece{Type: chess.Pawn, Color: chess.Black}, Color: chess.Black}
	if diff := cmp.Diff(want, state.LastMove); diff != "" {
		t.Errorf("LastMove mismatch (-want +got):\n%s", diff)
	}
	if state.Placement != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Errorf("Placement = %s", state.Placement)
	}
}

func TestMakeMoveBeforeOpponentJoins(t *testing.T) {
	g := NewGame("g1")
	if _, err := g.AddPlayer("alice"); err != nil {
		t.Fatal(err)
	}
	if err := g.MakeMove("alice", mv(t, "e2", "e4")); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("error = %v, want ErrGameNotActive", err)
	}
}

func TestKingCaptureFinishesGame(t *testing.T) {
	g := activeGame(t)
	moves := []struct {
		player   string
		from, to string
	}{
		{"alice", "e2", "e4"},
		{"bob", "f7", "f6"},
		{"alice", "d1", "h5"},
		{"bob", "a7", "a6"},
		{"alice", "h5", "e8"},
	}
	for _, m := range moves {
		if err := g.MakeMove(m.player, mv(t, m.from, m.to)); err != nil {
			t.Fatalf("%s %s-%s: %v", m.player, m.from, m.to, err)
		}
	}

	state := g.GetState()
	if state.Status != StatusFinished {
		t.Fatalf("Status = %s, want finished", state.Status)
	}
	if state.Resolve == nil || *state.Resolve != ResolveKingCaptured {
		t.Errorf("Resolve = %v", state.Resolve)
	}
	if state.Winner != chess.White {
		t.Errorf("Winner = %s", state.Winner)
	}
	if state.LastMove == nil || state.LastMove.Captured == nil || state.LastMove.Captured.Type != chess.King {
		t.Errorf("LastMove = %+v", state.LastMove)
	}
	if err := g.MakeMove("bob", mv(t, "a6", "a5")); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("move after finish error = %v", err)
	}
}

func TestResign(t *testing.T) {
	g := activeGame(t)
	if err := g.Resign("carol"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("spectator resign error = %v", err)
	}
	if err := g.Resign("bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	state := g.GetState()
	if state.Status != StatusFinished || state.Winner != chess.White {
		t.Errorf("state after resign = %+v", state)
	}
	if err := g.Resign("alice"); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("second resign error = %v", err)
	}
}

func TestGamesHaveSeparateBoards(t *testing.T) {
	a, b := activeGame(t), activeGame(t)
	if err := a.MakeMove("alice", mv(t, "e2", "e4")); err != nil {
		t.Fatal(err)
	}
	if got := b.GetState().Placement; got != chess.StartPlacement {
		t.Errorf("other game's board changed: %s", got)
	}
}

func TestConcurrentMovesAreSerialized(t *testing.T) {
	g := activeGame(t)

	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.MakeMove("alice", Move{From: chess.Position{Row: 6, Col: 4}, To: chess.Position{Row: 4, Col: 4}})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrNotYourTurn) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d racing moves succeeded, want 1", succeeded)
	}
}

func TestLegalMoves(t *testing.T) {
	g := activeGame(t)
	got, err := g.LegalMoves(sq(t, "b1"))
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	want := []chess.Position{sq(t, "a3"), sq(t, "c3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	g := activeGame(t)
	if err := g.MakeMove("alice", mv(t, "g1", "f3")); err != nil {
		t.Fatal(err)
	}

	rec := g.Record()
	restored, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if diff := cmp.Diff(g.GetState(), restored.GetState()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rec, restored.Record(), cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	if err := restored.MakeMove("bob", mv(t, "g8", "f6")); err != nil {
		t.Errorf("restored game rejected a legal move: %v", err)
	}
}

func TestFromRecordRejectsBadRecords(t *testing.T) {
	good := NewGame("g1").Record()

	tests := []struct {
		name   string
		mutate func(*GameRecord)
	}{
		{"missing id", func(r *GameRecord) { r.ID = "" }},
		{"bad side", func(r *GameRecord) { r.ToMove = "green" }},
		{"bad status", func(r *GameRecord) { r.Status = "paused" }},
		{"bad placement", func(r *GameRecord) { r.Placement = "8/8" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := good
			tt.mutate(&rec)
			if _, err := FromRecord(rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}
