package bytecodec

import (
	"github.com/ark8-project/ark8/cadence"
	"github.com/ark8-project/ark8/internal/options"
	"github.com/ark8-project/ark8/recipe"
)

// FitSettings configures a non-chunked fit attempt.
type FitSettings struct {
	Engine          EngineConfig
	Law             Law
	Seed            uint64
	Mode            ResidualMode
	StartEmission   int
	SearchEmissions int
	MaxTicks        uint64
}

// FitOption mutates FitSettings.
type FitOption = options.Option[*FitSettings]

// WithLaw overrides the mapping law.
func WithLaw(law Law) FitOption {
	return options.NoError(func(s *FitSettings) { s.Law = law })
}

// WithSeed overrides the model seed.
func WithSeed(seed uint64) FitOption {
	return options.NoError(func(s *FitSettings) { s.Seed = seed })
}

// WithResidualMode overrides the residual combine mode.
func WithResidualMode(mode ResidualMode) FitOption {
	return options.NoError(func(s *FitSettings) { s.Mode = mode })
}

// WithSearchEmissions overrides how many engine tokens a non-chunked fit
// scans across.
func WithSearchEmissions(n int) FitOption {
	return options.NoError(func(s *FitSettings) { s.SearchEmissions = n })
}

// WithMaxTicks overrides the tick budget the fit's engine run is capped
// at.
func WithMaxTicks(n uint64) FitOption {
	return options.NoError(func(s *FitSettings) { s.MaxTicks = n })
}

// EngineConfigFromRecipe derives the EngineConfig a fit needs to drive
// the cadence engine from a recipe and apply mode.
func EngineConfigFromRecipe(r recipe.Recipe, mode cadence.ApplyMode) EngineConfig {
	va, vc, epsilon, vl, delta, tStep, holdAandC := r.EngineParams()
	return EngineConfig{
		Params: cadence.Params{VA: va, VC: vc, Epsilon: epsilon, VL: vl, Delta: delta, TStep: tStep, HoldAandC: holdAandC},
		PhiA0:  r.Free.PhiA0,
		PhiC0:  r.Free.PhiC0,
		Model:  r.FieldModel(),
		Quant:  cadence.QuantParams{Min: r.QuantMin, Max: r.QuantMax, Shift: r.QuantShift},
		Mode:   mode,
	}
}

// DefaultFitSettings is a reasonable starting point for Fit, built from
// the default recipe's engine in Pair apply mode.
func DefaultFitSettings() FitSettings {
	return FitSettings{
		Engine:          EngineConfigFromRecipe(recipe.Default(), cadence.ApplyPair),
		Law:             LawText40Weighted,
		Mode:            ResidualXOR,
		SearchEmissions: 4096,
		MaxTicks:        50_000_000,
	}
}

// Fit applies opts over DefaultFitSettings and runs FitNonChunked.
func Fit(target []byte, opts ...FitOption) (FitResult, error) {
	s := DefaultFitSettings()
	if err := options.Apply(&s, opts...); err != nil {
		return FitResult{}, err
	}
	return FitNonChunked(s.Engine, s.Law, s.Seed, s.Mode, target, s.StartEmission, s.SearchEmissions, s.MaxTicks)
}
