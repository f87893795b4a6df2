package ga

import "fmt"

// Select runs population-size k-tournaments and credits each winner with
// one selection. Drawn indices within a round are distinct; the first
// drawn of equally fit candidates wins.
func (e *Engine) Select(k int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.checkTournament(k); err != nil {
		return err
	}

	e.pop.ResetSelection()
	drawn := make([]int, 0, k)
	for round := 0; round < e.pop.Size(); round++ {
		drawn = e.drawDistinct(drawn[:0], k)
		winner := TournamentWinner(e.pop.Individuals, drawn)
		e.pop.Individuals[winner].SelectionCount++
	}
	return nil
}

func (e *Engine) checkTournament(k int) error {
	if k < 1 || k > e.pop.Size() {
		return fmt.Errorf("%w: tournament size %d outside [1, %d]", ErrInvalidParameter, k, e.pop.Size())
	}
	return nil
}

// drawDistinct appends k distinct uniform indices, redrawing duplicates
func (e *Engine) drawDistinct(dst []int, k int) []int {
	n := e.pop.Size()
	for len(dst) < k {
		r := e.rng.Intn(n)
		for contains(dst, r) {
			r = e.rng.Intn(n)
		}
		dst = append(dst, r)
	}
	return dst
}

// TournamentWinner returns the drawn index with strictly greatest fitness
func TournamentWinner(individuals []*Individual, drawn []int) int {
	winner := drawn[0]
	for _, idx := range drawn[1:] {
		if individuals[idx].Fitness > individuals[winner].Fitness {
			winner = idx
		}
	}
	return winner
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
