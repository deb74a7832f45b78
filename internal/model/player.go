package model

import "github.com/benbeisheim/chess-backend/internal/chess"

type Player struct {
	ID string `json:"id"`
}

// Players holds the seated player ids. An empty id is a free seat.
type Players struct {
	White string `json:"white"`
	Black string `json:"black"`
}

func (p Players) ColorOf(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case p.White == playerID:
		return chess.White, true
	case p.Black == playerID:
		return chess.Black, true
	}
	return "", false
}

func (p Players) Full() bool {
	return p.White != "" && p.Black != ""
}
