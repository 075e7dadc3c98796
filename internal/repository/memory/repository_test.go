package memory

import (
	"sync"
	"testing"

	"github.com/omarshaarawi/draftbot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRepository_Board(t *testing.T) {
	repo := NewRepository()
	assert.Nil(t, repo.GetBoard())

	repo.SavePlan(&models.Solution{TotalYield: 1})
	assert.Nil(t, repo.GetBoard())

	board := &models.Board{LeagueName: "UGF", PickCount: 3}
	repo.SaveBoard(board)
	repo.SavePlan(&models.Solution{TotalYield: 37.5})

	got := repo.GetBoard()
	assert.Equal(t, "UGF", got.LeagueName)
	assert.Equal(t, 37.5, got.LastPlan.TotalYield)
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	repo := NewRepository()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			repo.SaveBoard(&models.Board{PickCount: i})
		}(i)
		go func() {
			defer wg.Done()
			_ = repo.GetBoard()
		}()
	}
	wg.Wait()
	assert.NotNil(t, repo.GetBoard())
}
