package gemm

import (
	"fmt"
)

// Tuned on the benchmark shape (1024^3, float64). One A tile (8x32), one B
// tile (32x32) and one C tile (8x32) take 12 KiB of scratch, well inside a
// 32 KiB L1 data cache.
const (
	DefaultTileRows  = 8
	DefaultTileCols  = 32
	DefaultTileDepth = 32
	DefaultThreshold = 256

	// MaxTile bounds every tile dimension so scratch blocks stay cache sized.
	MaxTile = 256
)

// Config holds the tuning constants of an Engine.
type Config struct {
	// TileRows, TileCols and TileDepth are the base kernel tile extents along
	// the rows of C, the columns of C and the shared dimension.
	TileRows  int `yaml:"tile_rows" json:"tile_rows"`
	TileCols  int `yaml:"tile_cols" json:"tile_cols"`
	TileDepth int `yaml:"tile_depth" json:"tile_depth"`

	// Threshold is the largest output extent handled by the base kernel
	// directly. Larger problems are split into quadrants.
	Threshold int `yaml:"threshold" json:"threshold"`

	// Workers is the parallelism budget. 0 means runtime.GOMAXPROCS(0); 1
	// disables parallelism.
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		TileRows:  DefaultTileRows,
		TileCols:  DefaultTileCols,
		TileDepth: DefaultTileDepth,
		Threshold: DefaultThreshold,
	}
}

// SelectConfig returns the default tuning adjusted for a problem of shape
// (m x p) * (p x n). Short shared dimensions get a shorter depth tile so the
// staged A and B tiles are not mostly padding.
func SelectConfig(m, p, n int) Config {
	cfg := DefaultConfig()

	switch {
	case p <= 16:
		cfg.TileDepth = 8
	case p <= 64:
		cfg.TileDepth = 16
	}

	cfg.TileRows = clampTile(cfg.TileRows, MaxTile)
	cfg.TileCols = clampTile(cfg.TileCols, MaxTile)
	cfg.TileDepth = clampTile(cfg.TileDepth, MaxTile)
	return cfg
}

func clampTile(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	check := func(name string, v int) error {
		if v < 1 || v > MaxTile {
			return fmt.Errorf("%w: %s=%d must be in [1, %d]", ErrInvalidConfig, name, v, MaxTile)
		}
		return nil
	}
	if err := check("tile_rows", c.TileRows); err != nil {
		return err
	}
	if err := check("tile_cols", c.TileCols); err != nil {
		return err
	}
	if err := check("tile_depth", c.TileDepth); err != nil {
		return err
	}
	if c.Threshold < 1 {
		return fmt.Errorf("%w: threshold=%d must be positive", ErrInvalidConfig, c.Threshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers=%d must not be negative", ErrInvalidConfig, c.Workers)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("tile=%dx%dx%d threshold=%d workers=%d",
		c.TileRows, c.TileCols, c.TileDepth, c.Threshold, c.Workers)
}
