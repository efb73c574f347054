package recipe

import (
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/internal/options"
)

// BuildOption configures a Recipe produced by Build, following the same
// functional-options shape used across this module.
type BuildOption = options.Option[*Recipe]

// WithSeed overrides the recipe's seed.
func WithSeed(seed uint64) BuildOption {
	return options.NoError(func(r *Recipe) { r.Seed = seed })
}

// WithWaves overrides the recipe's wave table.
func WithWaves(waves []field.Wave) BuildOption {
	return options.NoError(func(r *Recipe) { r.Waves = waves })
}

// Build returns Default() with every opt applied in order.
func Build(opts ...BuildOption) (Recipe, error) {
	r := Default()
	if err := options.Apply(&r, opts...); err != nil {
		return Recipe{}, err
	}
	return r, nil
}
