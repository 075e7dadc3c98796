package memory

import (
	"sync"

	"github.com/omarshaarawi/draftbot/internal/models"
)

type Repository struct {
	board *models.Board
	mu    sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveBoard(board *models.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = board
}

func (r *Repository) GetBoard() *models.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.board
}

// SavePlan attaches a plan to the stored board. It is dropped when no board
// has been saved yet.
func (r *Repository) SavePlan(plan *models.Solution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.board != nil {
		r.board.LastPlan = plan
	}
}
