package model

import (
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// Queue is a FIFO of players waiting for an opponent.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.Player.ID == player.ID {
			return ErrAlreadyQueued
		}
	}

	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		JoinedAt: time.Now(),
	})
	return nil
}

// NextPair pops the two players who have waited longest. ok is false when
// fewer than two are queued.
func (q *Queue) NextPair() (first, second Player, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.players) < 2 {
		return Player{}, Player{}, false
	}
	first = q.players[0].Player
	second = q.players[1].Player
	q.players = q.players[2:]
	return first, second, true
}

// Remove drops playerID from the queue and reports whether it was there.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
