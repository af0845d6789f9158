package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Picker chooses up to k distinct ids from candidates in random order
type Picker interface {
	Pick(candidates []string, k int) []string
}

// RandomPicker draws with a partial Fisher-Yates shuffle over a seeded PCG source
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker creates a picker; seed 0 seeds from the clock
func NewRandomPicker(seed uint64) *RandomPicker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick never modifies candidates; it returns min(k, len(candidates)) ids
func (p *RandomPicker) Pick(candidates []string, k int) []string {
	if k > len(candidates) {
		k = len(candidates)
	}
	if k <= 0 {
		return []string{}
	}

	pool := make([]string, len(candidates))
	copy(pool, candidates)

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + p.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// distinct drops repeated ids keeping first occurrences
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// without returns ids not contained in exclude
func without(ids []string, exclude map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
