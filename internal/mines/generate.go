package mines

import "math/rand/v2"

// PlaceMines puts count mines on distinct, currently mine-free cells chosen
// uniformly at random. Positions are drawn without replacement from a
// candidate list, so exactly count draws are made.
func PlaceMines(grid Grid, count int, r *rand.Rand) error {
	size := grid.Size()
	if err := (GameParams{Size: size, MineCount: count}).Validate(); err != nil {
		return err
	}

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, size*size)
	for row := range size {
		for col := range size {
			if !grid[row][col].HasMine {
				candidates = append(candidates, row*size+col)
			}
		}
	}
	if count > len(candidates) {
		return ConfigError{
			Size:      size,
			MineCount: count,
			reason:    "not enough mine-free cells left",
		}
	}

	/*
	 * Now pick count off the list at random.
	 */
	k := len(candidates)
	for range count {
		i := r.IntN(k)
		grid[candidates[i]/size][candidates[i]%size].HasMine = true
		k--
		candidates[i] = candidates[k]
	}
	return nil
}

// ComputeAdjacency stores in every non-mine cell the number of mines among its
// neighbours. Mine cells are reset to 0. Running it twice is harmless.
func ComputeAdjacency(grid Grid) {
	for row := range grid {
		for col := range grid[row] {
			cell := &grid[row][col]
			if cell.HasMine {
				cell.AdjacentMines = 0
				continue
			}
			n := 0
			for r, c := range grid.Neighbors(row, col) {
				if grid[r][c].HasMine {
					n++
				}
			}
			cell.AdjacentMines = n
		}
	}
}
