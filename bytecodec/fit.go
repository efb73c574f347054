package bytecodec

import (
	"github.com/ark8-project/ark8/cadence"
	"github.com/ark8-project/ark8/compress"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/scalar"
	"github.com/ark8-project/ark8/stream"
)

// EngineConfig bundles everything a fit needs to materialize the cadence
// engine's prediction stream: its free-orbit/lockstep parameters, initial
// phases, field model, quantizer bounds, and byte-apply mode (one packed
// byte per emission, or the six-byte RGB expansion).
type EngineConfig struct {
	Params       cadence.Params
	PhiA0, PhiC0 scalar.Turn
	Model        field.Model
	Quant        cadence.QuantParams
	Mode         cadence.ApplyMode
}

// materializeStream drives cfg's engine for searchEmissions tokens after
// skipping startEmission, returning the serialized raw prediction bytes
// and the absolute stream position the first returned byte sits at.
func (cfg EngineConfig) materializeStream(startEmission, searchEmissions int, maxTicks uint64) (raw []byte, baseAbs uint64, err error) {
	raw, err = cadence.StreamBytes(cfg.Params, cfg.PhiA0, cfg.PhiC0, cfg.Model, cfg.Quant, cfg.Mode, startEmission, searchEmissions, maxTicks)
	baseAbs = uint64(startEmission) * uint64(cfg.Mode.BytesPerEmission())
	return raw, baseAbs, err
}

// Objective selects how FitChunked scores a candidate chunk offset.
type Objective uint8

const (
	// ObjectiveMatches scores by raw byte-match count against the model
	// stream (cheap, no compression call).
	ObjectiveMatches Objective = iota
	// ObjectiveZstd scores by the zstd-compressed size of the residual
	// the offset would produce (smaller is better).
	ObjectiveZstd
)

// FitResult is the outcome of fitting target against the engine's
// mapped prediction stream. Offset is an absolute position in that
// stream (bytes, counted from tick zero) suitable for a TM0 stride
// timing map.
type FitResult struct {
	Offset   uint64
	Residual []byte
}

func countMatches(model, target []byte) int {
	n := 0
	for i := range target {
		if model[i] == target[i] {
			n++
		}
	}
	return n
}

// FitNonChunked scans offsets within the engine's materialized
// prediction stream (after skipping startEmission tokens, across up to
// searchEmissions further tokens) for the one whose mapped bytes best
// match target, preferring the earliest offset on ties, and returns the
// residual produced at that offset.
func FitNonChunked(cfg EngineConfig, law Law, seed uint64, mode ResidualMode, target []byte, startEmission, searchEmissions int, maxTicks uint64) (FitResult, error) {
	n := len(target)
	if n == 0 {
		return FitResult{}, errs.New(errs.Validation, errs.ErrInvalidRecipe, "target must be non-empty")
	}

	raw, baseAbs, err := cfg.materializeStream(startEmission, searchEmissions, maxTicks)
	if err != nil {
		return FitResult{}, err
	}
	if len(raw) < n {
		return FitResult{}, errs.New(errs.Capacity, errs.ErrNoLegalWindow, "search window cannot cover target")
	}
	windowLen := len(raw) - n

	bestOffset := 0
	bestScore := -1
	for s := 0; s <= windowLen; s++ {
		mapped := MapStream(law, seed, baseAbs+uint64(s), raw[s:s+n])
		score := countMatches(mapped, target)
		if score > bestScore {
			bestScore = score
			bestOffset = s
		}
	}

	mapped := MapStream(law, seed, baseAbs+uint64(bestOffset), raw[bestOffset:bestOffset+n])
	residual := make([]byte, n)
	for i, p := range target {
		residual[i] = stream.ApplyConditioning(MakeResidualByte(mode, mapped[i], p), 0, stream.CondTags{}, uint64(i))
	}
	return FitResult{Offset: baseAbs + uint64(bestOffset), Residual: residual}, nil
}

// Chunk is one contiguous slice of a chunked fit's target.
type Chunk struct {
	Offset uint64
	Data   []byte
}

// splitChunks slices target into chunkSize-sized pieces (the last one
// may be shorter).
func splitChunks(target []byte, chunkSize int) [][]byte {
	var chunks [][]byte
	for i := 0; i < len(target); i += chunkSize {
		end := i + chunkSize
		if end > len(target) {
			end = len(target)
		}
		chunks = append(chunks, target[i:end])
	}
	return chunks
}

func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// jumpCost is the varint-byte-length of the positional delta between the
// previous chunk's end and a candidate offset, weighted by transPenalty.
func jumpCost(prevOffset, offset uint64, transPenalty int) int {
	var delta uint64
	if offset >= prevOffset {
		delta = offset - prevOffset
	} else {
		delta = prevOffset - offset
	}
	return varintLen(delta) * transPenalty
}

func zstdSize(data []byte) (int, error) {
	codec := compress.NewZstdCompressor()
	out, err := codec.Compress(data)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// FitChunkedOptions configures FitChunked.
type FitChunkedOptions struct {
	ChunkSize     int
	Lookahead     uint64
	Objective     Objective
	TopK          int
	TransPenalty  int
	StartEmission int
	MaxTicks      uint64
}

// streamSizeForChunked bounds how many raw bytes a chunked fit could ever
// need to touch: every chunk's legal window extends at most Lookahead
// bytes past the previous chunk's end, and every chunk consumes
// ChunkSize bytes once chosen.
func streamSizeForChunked(target []byte, opts FitChunkedOptions) int {
	chunks := (len(target) + opts.ChunkSize - 1) / opts.ChunkSize
	return len(target) + chunks*(int(opts.Lookahead)+1) + opts.ChunkSize + 1
}

// FitChunked fits target chunk by chunk against the engine's
// materialized prediction stream. Each chunk's legal window is
// [prevEnd+1, prevEnd+1+Lookahead]; the candidate within that window
// scoring best on Objective is kept. When Objective is ObjectiveMatches
// and TopK > 0, a refine pass re-scores the best TopK candidates by
// actual zstd residual size plus a jump-cost penalty.
func FitChunked(cfg EngineConfig, law Law, seed uint64, mode ResidualMode, target []byte, opts FitChunkedOptions) ([]uint64, []byte, error) {
	if opts.ChunkSize <= 0 {
		return nil, nil, errs.New(errs.Validation, errs.ErrInvalidRecipe, "ChunkSize must be positive")
	}
	if len(target) == 0 {
		return nil, nil, nil
	}

	bpe := cfg.Mode.BytesPerEmission()
	needBytes := streamSizeForChunked(target, opts)
	searchEmissions := (needBytes + bpe - 1) / bpe
	raw, baseAbs, err := cfg.materializeStream(opts.StartEmission, searchEmissions, opts.MaxTicks)
	if err != nil {
		return nil, nil, err
	}

	chunks := splitChunks(target, opts.ChunkSize)
	offsets := make([]uint64, 0, len(chunks))
	residual := make([]byte, 0, len(target))

	var prevEnd uint64
	for idx, chunk := range chunks {
		windowStart := prevEnd + 1
		if idx == 0 {
			windowStart = 0
		}
		windowEnd := windowStart + opts.Lookahead

		type candidate struct {
			offset uint64
			score  int
		}
		var candidates []candidate
		for off := windowStart; off <= windowEnd; off++ {
			if off+uint64(len(chunk)) > uint64(len(raw)) {
				break
			}
			mapped := MapStream(law, seed, baseAbs+off, raw[off:off+uint64(len(chunk))])
			var score int
			switch opts.Objective {
			case ObjectiveZstd:
				r := make([]byte, len(chunk))
				for i := range chunk {
					r[i] = MakeResidualByte(mode, mapped[i], chunk[i])
				}
				sz, err := zstdSize(r)
				if err != nil {
					return nil, nil, err
				}
				score = -sz
			default:
				score = countMatches(mapped, chunk)
			}
			candidates = append(candidates, candidate{offset: off, score: score})
		}
		if len(candidates) == 0 {
			return offsets, residual, errs.New(errs.Capacity, errs.ErrNoLegalWindow, "no legal window for chunk")
		}

		// Sort candidates best-first, ties broken by earliest offset.
		for i := 1; i < len(candidates); i++ {
			for j := i; j > 0 && (candidates[j].score > candidates[j-1].score ||
				(candidates[j].score == candidates[j-1].score && candidates[j].offset < candidates[j-1].offset)); j-- {
				candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
			}
		}

		topK := opts.TopK
		if topK > len(candidates) {
			topK = len(candidates)
		}
		if topK < 0 || opts.Objective != ObjectiveMatches {
			topK = 0
		}

		bestOffset := candidates[0].offset
		bestCost := -1
		for _, c := range candidates[:topK] {
			mapped := MapStream(law, seed, baseAbs+c.offset, raw[c.offset:c.offset+uint64(len(chunk))])
			r := make([]byte, len(chunk))
			for i := range chunk {
				r[i] = MakeResidualByte(mode, mapped[i], chunk[i])
			}
			sz, err := zstdSize(r)
			if err != nil {
				return nil, nil, err
			}
			cost := sz + jumpCost(prevEnd, c.offset, opts.TransPenalty)
			if bestCost == -1 || cost < bestCost {
				bestCost = cost
				bestOffset = c.offset
			}
		}

		mapped := MapStream(law, seed, baseAbs+bestOffset, raw[bestOffset:bestOffset+uint64(len(chunk))])
		for i := range chunk {
			residual = append(residual, MakeResidualByte(mode, mapped[i], chunk[i]))
		}
		offsets = append(offsets, baseAbs+bestOffset)
		prevEnd = bestOffset + uint64(len(chunk)) - 1
	}

	return offsets, residual, nil
}

// ReconstructChunked inverts FitChunked given the same engine config,
// law, seed, mode, chunk size, offsets, and residual bytes it produced.
// offsets are absolute stream positions, so the engine stream is
// regenerated from tick zero (startEmission 0) out to the highest offset
// needed.
func ReconstructChunked(cfg EngineConfig, law Law, seed uint64, mode ResidualMode, chunkSize int, offsets []uint64, residual []byte, maxTicks uint64) ([]byte, error) {
	var maxEnd uint64
	for _, off := range offsets {
		if end := off + uint64(chunkSize); end > maxEnd {
			maxEnd = end
		}
	}
	bpe := cfg.Mode.BytesPerEmission()
	searchEmissions := int((maxEnd + uint64(bpe) - 1) / uint64(bpe))
	raw, baseAbs, err := cfg.materializeStream(0, searchEmissions, maxTicks)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(residual))
	pos := 0
	for _, off := range offsets {
		n := chunkSize
		if pos+n > len(residual) {
			n = len(residual) - pos
		}
		local := off - baseAbs
		mapped := MapStream(law, seed, off, raw[local:local+uint64(n)])
		for i := 0; i < n; i++ {
			out = append(out, ApplyResidualByte(mode, mapped[i], residual[pos+i]))
		}
		pos += n
	}
	return out, nil
}
