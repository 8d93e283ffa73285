package gemm

import "sync"

// Shape identifies a problem (M x P) * (P x N).
type Shape struct {
	M int
	P int
	N int
}

type tunedConfig struct {
	cfg   Config
	score float64
}

// Autotuner remembers the best-scoring Config per Shape.
type Autotuner struct {
	mu    sync.RWMutex
	cache map[Shape]tunedConfig
}

func NewAutotuner() *Autotuner {
	return &Autotuner{
		cache: make(map[Shape]tunedConfig),
	}
}

// Tune returns the cached Config for shape, or scores base and its
// neighbours with score (higher is better), caches the winner and returns it.
// Workers is carried over from base unchanged.
func (t *Autotuner) Tune(shape Shape, base Config, score func(cfg Config) float64) Config {
	if cfg, ok := t.Lookup(shape); ok {
		return cfg
	}

	bestCfg := base
	bestScore := score(base)

	for _, cfg := range candidateConfigs(base) {
		s := score(cfg)
		if s > bestScore {
			bestCfg = cfg
			bestScore = s
		}
	}

	t.mu.Lock()
	t.cache[shape] = tunedConfig{
		cfg:   bestCfg,
		score: bestScore,
	}
	t.mu.Unlock()

	return bestCfg
}

// Lookup returns the cached Config for shape.
func (t *Autotuner) Lookup(shape Shape) (Config, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tuned, ok := t.cache[shape]
	return tuned.cfg, ok
}

// candidateConfigs varies one tuning constant of base at a time. base itself
// and invalid variants are left out.
func candidateConfigs(base Config) []Config {
	var out []Config
	seen := map[Config]bool{base: true}
	add := func(cfg Config) {
		if seen[cfg] || cfg.Validate() != nil {
			return
		}
		seen[cfg] = true
		out = append(out, cfg)
	}

	for _, td := range []int{base.TileDepth / 2, base.TileDepth * 2, 64} {
		cfg := base
		cfg.TileDepth = td
		add(cfg)
	}
	for _, tc := range []int{base.TileCols / 2, base.TileCols * 2} {
		cfg := base
		cfg.TileCols = tc
		add(cfg)
	}
	for _, tr := range []int{base.TileRows / 2, base.TileRows * 2} {
		cfg := base
		cfg.TileRows = tr
		add(cfg)
	}
	for _, th := range []int{base.Threshold / 2, base.Threshold * 2} {
		cfg := base
		cfg.Threshold = th
		add(cfg)
	}
	return out
}
