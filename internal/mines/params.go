package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"strings"
)

// GameParams is the fixed configuration a game and all of its restarts are
// generated from.
type GameParams struct {
	Size      int `json:"size"`
	MineCount int `json:"mine_count"`
}

// DefaultParams is the reference 10x10 board with 10 mines.
var DefaultParams = GameParams{Size: 10, MineCount: 10}

func (p GameParams) Cells() int {
	return p.Size * p.Size
}

func (p GameParams) Validate() error {
	var reason string
	switch {
	case p.Size <= 0:
		reason = "size must be positive"
	case p.MineCount < 0:
		reason = "mine count must not be negative"
	case p.MineCount >= p.Cells():
		reason = "mine count must be less than the number of cells"
	default:
		return nil
	}
	return ConfigError{Size: p.Size, MineCount: p.MineCount, reason: reason}
}

// Key identifies the board configuration, e.g. "10x10:10". Best times are
// stored per key.
func (p GameParams) Key() string {
	return fmt.Sprintf("%dx%d:%d", p.Size, p.Size, p.MineCount)
}

func ParseKey(key string) (*GameParams, error) {
	var width, height, mineCount int
	skey := strings.NewReplacer("x", " ", ":", " ").Replace(key)
	n, err := fmt.Sscanf(skey, "%d %d %d", &width, &height, &mineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid board key (key = "%s", n = %d, err = %w)`, key, n, err,
		)
	}
	if width != height {
		return nil, fmt.Errorf(`invalid board key "%s": board must be square`, key)
	}
	p := &GameParams{Size: width, MineCount: mineCount}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewRand returns a generator seeded from runtime entropy.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}
