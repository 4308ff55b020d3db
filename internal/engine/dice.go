package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Dice produces uniform draws in [0,100). A check succeeds when the draw is
// strictly below the chance.
type Dice interface {
	Roll() float64
}

type randomDice struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewDice returns a goroutine-safe Dice seeded with seed.
func NewDice(seed int64) Dice {
	return &randomDice{r: rand.New(rand.NewSource(seed))}
}

func (d *randomDice) Roll() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.r.Float64() * 100
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SequenceDice replays a fixed list of draws, repeating the last one once
// exhausted. Used for replays and deterministic tests.
type SequenceDice struct {
	mu    sync.Mutex
	rolls []float64
	next  int
}

func NewSequenceDice(rolls ...float64) *SequenceDice {
	return &SequenceDice{rolls: rolls}
}

func (d *SequenceDice) Roll() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rolls) == 0 {
		return 0
	}
	if d.next >= len(d.rolls) {
		return d.rolls[len(d.rolls)-1]
	}
	v := d.rolls[d.next]
	d.next++
	return v
}

// Used reports how many draws have been consumed.
func (d *SequenceDice) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}
