package chess

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlacementOfStartingPosition(t *testing.T) {
	if got := NewStandardBoard().Placement(); got != StartPlacement {
		t.Errorf("Placement() = %q, want %q", got, StartPlacement)
	}
}

func TestParsePlacementRestoresBoard(t *testing.T) {
	b := NewStandardBoard()
	for _, mv := range [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}, {"d8", "d5"}} {
		if err := b.MovePiece(mustPos(t, mv[0]), mustPos(t, mv[1])); err != nil {
			t.Fatalf("MovePiece %v: %v", mv, err)
		}
	}

	placement := b.Placement()
	if placement != "rnb1kbnr/ppp1pppp/8/3q4/8/8/PPPP1PPP/RNBQKBNR" {
		t.Fatalf("unexpected placement %q", placement)
	}
	restored, err := ParsePlacement(placement)
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	if diff := cmp.Diff(b.Grid(), restored.Grid()); diff != "" {
		t.Errorf("restored board mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlacementIgnoresTrailingFields(t *testing.T) {
	b, err := ParsePlacement(StartPlacement + " w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	if got, _ := b.PieceAt(Position{7, 4}); got != (Piece{King, White}) {
		t.Errorf("e1 = %+v", got)
	}
}

func TestParsePlacementErrors(t *testing.T) {
	tests := []string{
		"",
		"8/8/8/8/8/8/8",
		"9/8/8/8/8/8/8/8",
		"rnbqkbnrr/8/8/8/8/8/8/8",
		"7/8/8/8/8/8/8/8",
		"x7/8/8/8/8/8/8/8",
		"44p/8/8/8/8/8/8/8",
	}
	for _, s := range tests {
		if _, err := ParsePlacement(s); !errors.Is(err, ErrInvalidPlacement) {
			t.Errorf("ParsePlacement(%q) error = %v, want ErrInvalidPlacement", s, err)
		}
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"a8", Position{0, 0}},
		{"h1", Position{7, 7}},
		{"e2", Position{6, 4}},
		{" E4 ", Position{4, 4}},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if err != nil {
			t.Fatalf("ParsePosition(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePosition(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.want.String() {
			t.Errorf("String() = %q", got.String())
		}
	}

	for _, bad := range []string{"", "e", "i1", "a9", "a0", "e22"} {
		if _, err := ParsePosition(bad); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ParsePosition(%q) error = %v, want ErrInvalidPosition", bad, err)
		}
	}
}

func TestPositionJSON(t *testing.T) {
	var req struct {
		From Position `json:"from"`
		To   Position `json:"to"`
	}
	if err := json.Unmarshal([]byte(`{"from":"e2","to":{"row":4,"col":4}}`), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.From != (Position{6, 4}) || req.To != (Position{4, 4}) {
		t.Errorf("decoded %+v", req)
	}

	out, err := json.Marshal(Position{Row: 1, Col: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"row":1,"col":2}` {
		t.Errorf("Marshal = %s", out)
	}

	var p Position
	if err := json.Unmarshal([]byte(`{"row":1}`), &p); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("missing col error = %v", err)
	}
	if err := json.Unmarshal([]byte(`"z9"`), &p); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("bad square error = %v", err)
	}
}
