package bytecodec

import (
	"fmt"

	"github.com/ark8-project/ark8/compress"
)

// Scoreboard is an observational report on one fit attempt: how well the
// chosen model offset predicted the target, and how the residual
// compresses. It is never consulted by Fit/Reconstruct themselves, only
// produced alongside them for diagnostics. CompressedLen is the residual's
// zstd size (the codec FitChunked itself scores by); CompressedLenS2 is the
// same residual through s2, offered purely as a faster-codec comparison
// point since s2 trades ratio for decode speed.
type Scoreboard struct {
	Law             Law
	Matches         int
	TargetLen       int
	ResidualBytes   int
	CompressedLen   int
	CompressedLenS2 int
}

// MatchRatio is Matches/TargetLen, or 0 for an empty target.
func (s Scoreboard) MatchRatio() float64 {
	if s.TargetLen == 0 {
		return 0
	}
	return float64(s.Matches) / float64(s.TargetLen)
}

// String renders a one-line human-readable summary.
func (s Scoreboard) String() string {
	return fmt.Sprintf(
		"law=%d matches=%d/%d (%.1f%%) residual=%dB zstd=%dB s2=%dB",
		s.Law, s.Matches, s.TargetLen, s.MatchRatio()*100, s.ResidualBytes, s.CompressedLen, s.CompressedLenS2,
	)
}

func s2Size(data []byte) (int, error) {
	codec := compress.NewS2Compressor()
	out, err := codec.Compress(data)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Score builds a Scoreboard for a given engine stream offset and
// already-computed residual. rawStream must hold the engine's raw
// prediction bytes starting at offset.
func Score(law Law, seed uint64, offset uint64, rawStream, target, residual []byte) (Scoreboard, error) {
	mapped := MapStream(law, seed, offset, rawStream)
	compressed, err := zstdSize(residual)
	if err != nil {
		return Scoreboard{}, err
	}
	compressedS2, err := s2Size(residual)
	if err != nil {
		return Scoreboard{}, err
	}
	return Scoreboard{
		Law:             law,
		Matches:         countMatches(mapped, target),
		TargetLen:       len(target),
		ResidualBytes:   len(residual),
		CompressedLen:   compressed,
		CompressedLenS2: compressedS2,
	}, nil
}
