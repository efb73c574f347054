package bitfield

import (
	"github.com/ark8-project/ark8/cadence"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/lawgen"
	"github.com/ark8-project/ark8/recipe"
	"github.com/ark8-project/ark8/scalar"
)

// EngineConfig bundles everything a bit-field fit needs to materialize
// the cadence engine's RGB-pair emission stream.
type EngineConfig struct {
	Params       cadence.Params
	PhiA0, PhiC0 scalar.Turn
	Model        field.Model
	Quant        cadence.QuantParams
}

// EngineConfigFromRecipe derives the EngineConfig a bit-field fit needs
// to drive the cadence engine from a recipe.
func EngineConfigFromRecipe(r recipe.Recipe) EngineConfig {
	va, vc, epsilon, vl, delta, tStep, holdAandC := r.EngineParams()
	return EngineConfig{
		Params: cadence.Params{VA: va, VC: vc, Epsilon: epsilon, VL: vl, Delta: delta, TStep: tStep, HoldAandC: holdAandC},
		PhiA0:  r.Free.PhiA0,
		PhiC0:  r.Free.PhiC0,
		Model:  r.FieldModel(),
		Quant:  cadence.QuantParams{Min: r.QuantMin, Max: r.QuantMax, Shift: r.QuantShift},
	}
}

// MapSeed carries the mapping law's seed plus the lowpass-thresh law's
// extra tuning knobs (unused by geom/hash).
type MapSeed struct {
	Seed        uint64
	Tau         byte
	SmoothShift uint
}

// symbolStream drives cfg's engine for skipEmissions+count tokens,
// expands each to its RGB-pair bytes, and maps every emission to one
// symbol via law. The lowpass-thresh law carries running state across
// the whole stream, including the skipped prefix, so callers cannot
// resume a lowpass fit mid-stream without regenerating from emission 0.
func symbolStream(cfg EngineConfig, law MappingLaw, ms MapSeed, bits int, skipEmissions, count int, maxTicks uint64) ([]byte, error) {
	e := cadence.NewEngine(cfg.Params, cfg.PhiA0, cfg.PhiC0)
	var ticks uint64
	var state LowpassState

	step := func() ([6]byte, error) {
		for {
			if maxTicks > 0 && ticks >= maxTicks {
				return [6]byte{}, errs.New(errs.Capacity, errs.ErrTickBudget, "exceeded max ticks before reaching requested emission count")
			}
			tok, ok := e.StepWithField(cfg.Model, cfg.Quant)
			ticks++
			if ok {
				var rgb [6]byte
				copy(rgb[:], cadence.ToRgbPair(tok).ToBytes())
				return rgb, nil
			}
		}
	}

	for i := 0; i < skipEmissions; i++ {
		rgb, err := step()
		if err != nil {
			return nil, err
		}
		if _, err := MapSymbol(law, ms.Seed, uint64(i), rgb, bits, ms.Tau, ms.SmoothShift, &state); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, count)
	for i := 0; i < count; i++ {
		rgb, err := step()
		if err != nil {
			return out, err
		}
		emissionIndex := uint64(skipEmissions + i)
		sym, err := MapSymbol(law, ms.Seed, emissionIndex, rgb, bits, ms.Tau, ms.SmoothShift, &state)
		if err != nil {
			return out, err
		}
		out = append(out, sym)
	}
	return out, nil
}

// rotateSymbol adds k modulo 2^bits to sym (the chunk-addk transform).
func rotateSymbol(sym, k byte, bits int) byte {
	mask := symMask(bits)
	return (sym + k) & mask
}

// unrotateSymbol inverts rotateSymbol.
func unrotateSymbol(sym, k byte, bits int) byte {
	mask := symMask(bits)
	return (sym - k) & mask
}

// FitChunkedOptions configures FitChunked.
type FitChunkedOptions struct {
	ChunkSize     int // symbols per chunk
	Lookahead     uint64
	TopK          int
	TransPenalty  int
	StartEmission int
	MaxTicks      uint64
	ChunkAddK     bool // search a per-chunk additive rotation
}

func symCountMatches(a, b []byte) int {
	n := 0
	for i := range b {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

// FitChunked fits target (already decomposed into k-bit symbols by
// TargetSymbols) chunk by chunk against the engine's mapped symbol
// stream. Each chunk's legal window is [prevEnd+1, prevEnd+1+Lookahead];
// residual is symbol-wise XOR. When opts.ChunkAddK is set, each chunk
// also tries the four best additive rotations for each of its TopK
// candidate offsets.
func FitChunked(cfg EngineConfig, law MappingLaw, ms MapSeed, bits int, targetSymbols []byte, opts FitChunkedOptions) ([]uint64, []byte, []byte, error) {
	if opts.ChunkSize <= 0 {
		return nil, nil, nil, errs.New(errs.Validation, errs.ErrInvalidRecipe, "ChunkSize must be positive")
	}
	if len(targetSymbols) == 0 {
		return nil, nil, nil, nil
	}

	numChunks := (len(targetSymbols) + opts.ChunkSize - 1) / opts.ChunkSize
	needSymbols := len(targetSymbols) + numChunks*(int(opts.Lookahead)+1) + opts.ChunkSize + 1
	predicted, err := symbolStream(cfg, law, ms, bits, opts.StartEmission, needSymbols, opts.MaxTicks)
	if err != nil {
		return nil, nil, nil, err
	}

	var offsets []uint64
	residual := make([]byte, 0, len(targetSymbols))
	var chunkAddK []byte

	var prevEnd uint64
	for i := 0; i < len(targetSymbols); i += opts.ChunkSize {
		end := i + opts.ChunkSize
		if end > len(targetSymbols) {
			end = len(targetSymbols)
		}
		chunk := targetSymbols[i:end]

		windowStart := prevEnd + 1
		if len(offsets) == 0 {
			windowStart = 0
		}
		windowEnd := windowStart + opts.Lookahead

		type candidate struct {
			offset uint64
			score  int
		}
		var candidates []candidate
		for off := windowStart; off <= windowEnd; off++ {
			if off+uint64(len(chunk)) > uint64(len(predicted)) {
				break
			}
			score := symCountMatches(predicted[off:off+uint64(len(chunk))], chunk)
			candidates = append(candidates, candidate{offset: off, score: score})
		}
		if len(candidates) == 0 {
			return offsets, residual, chunkAddK, errs.New(errs.Capacity, errs.ErrNoLegalWindow, "no legal window for chunk")
		}
		for a := 1; a < len(candidates); a++ {
			for b := a; b > 0 && (candidates[b].score > candidates[b-1].score ||
				(candidates[b].score == candidates[b-1].score && candidates[b].offset < candidates[b-1].offset)); b-- {
				candidates[b], candidates[b-1] = candidates[b-1], candidates[b]
			}
		}
		topK := opts.TopK
		if topK <= 0 || topK > len(candidates) {
			topK = len(candidates)
		}

		bestOffset := candidates[0].offset
		var bestK byte
		bestCost := -1
		for _, c := range candidates[:topK] {
			pred := predicted[c.offset : c.offset+uint64(len(chunk))]
			kCandidates := []byte{0}
			if opts.ChunkAddK {
				kCandidates = bestAddKCandidates(pred, chunk, bits)
			}
			for _, k := range kCandidates {
				cost := 0
				for j := range chunk {
					if rotateSymbol(pred[j], k, bits) != chunk[j] {
						cost++
					}
				}
				cost += int(jumpCostSym(prevEnd, c.offset, opts.TransPenalty))
				if bestCost == -1 || cost < bestCost {
					bestCost = cost
					bestOffset = c.offset
					bestK = k
				}
			}
		}

		pred := predicted[bestOffset : bestOffset+uint64(len(chunk))]
		for j := range chunk {
			residual = append(residual, chunk[j]^rotateSymbol(pred[j], bestK, bits))
		}
		offsets = append(offsets, uint64(opts.StartEmission)+bestOffset)
		chunkAddK = append(chunkAddK, bestK)
		prevEnd = bestOffset + uint64(len(chunk)) - 1
	}

	if !opts.ChunkAddK {
		chunkAddK = nil
	}
	return offsets, residual, chunkAddK, nil
}

// bestAddKCandidates returns the top four additive rotations (by match
// count against chunk) to refine-score, per the chunk-addk transform.
func bestAddKCandidates(pred, chunk []byte, bits int) []byte {
	span := 1 << uint(bits)
	type kScore struct {
		k     byte
		score int
	}
	scores := make([]kScore, span)
	for k := 0; k < span; k++ {
		n := 0
		for j := range chunk {
			if rotateSymbol(pred[j], byte(k), bits) == chunk[j] {
				n++
			}
		}
		scores[k] = kScore{byte(k), n}
	}
	for a := 1; a < len(scores); a++ {
		for b := a; b > 0 && scores[b].score > scores[b-1].score; b-- {
			scores[b], scores[b-1] = scores[b-1], scores[b]
		}
	}
	top := 4
	if top > len(scores) {
		top = len(scores)
	}
	out := make([]byte, top)
	for i := 0; i < top; i++ {
		out[i] = scores[i].k
	}
	return out
}

func jumpCostSym(prevOffset, offset uint64, transPenalty int) int {
	var delta uint64
	if offset >= prevOffset {
		delta = offset - prevOffset
	} else {
		delta = prevOffset - offset
	}
	n := 1
	for delta >= 0x80 {
		n++
		delta >>= 7
	}
	return n * transPenalty
}

// ReconstructChunked inverts FitChunked given the same engine config, law,
// map seed, chunk size, offsets, optional chunkAddK, and residual symbols.
func ReconstructChunked(cfg EngineConfig, law MappingLaw, ms MapSeed, bits, chunkSize int, offsets []uint64, chunkAddK []byte, residual []byte, maxTicks uint64) ([]byte, error) {
	var maxEnd uint64
	for _, off := range offsets {
		if end := off + uint64(chunkSize); end > maxEnd {
			maxEnd = end
		}
	}
	predicted, err := symbolStream(cfg, law, ms, bits, 0, int(maxEnd), maxTicks)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(residual))
	pos := 0
	for idx, off := range offsets {
		n := chunkSize
		if pos+n > len(residual) {
			n = len(residual) - pos
		}
		var k byte
		if len(chunkAddK) > idx {
			k = chunkAddK[idx]
		}
		pred := predicted[off : off+uint64(n)]
		for j := 0; j < n; j++ {
			out = append(out, unrotateSymbol(pred[j]^residual[pos+j], k, bits))
		}
		pos += n
	}
	return out, nil
}

// LawDrivenFit derives a jump-walk timing offset (no scanning) and
// applies it as a single contiguous window, mirroring the chunked fit's
// residual step.
func LawDrivenFit(cfg EngineConfig, law MappingLaw, ms MapSeed, bits int, targetSymbols []byte, jw lawgen.JumpWalkParams, maxTicks uint64) (offset uint64, residual []byte, err error) {
	n := len(targetSymbols)
	predicted, err := symbolStream(cfg, law, ms, bits, 0, n+int(jw.MaxJump)+1, maxTicks)
	if err != nil {
		return 0, nil, err
	}
	windowLen := uint64(len(predicted) - n)
	offset = lawgen.JumpWalkOffset(jw, n, windowLen+1)
	if offset+uint64(n) > uint64(len(predicted)) {
		offset = windowLen
	}
	pred := predicted[offset : offset+uint64(n)]
	residual = make([]byte, n)
	for i := range targetSymbols {
		residual[i] = targetSymbols[i] ^ pred[i]
	}
	return offset, residual, nil
}

// LawDrivenReconstruct inverts LawDrivenFit.
func LawDrivenReconstruct(cfg EngineConfig, law MappingLaw, ms MapSeed, bits int, offset uint64, residual []byte, maxTicks uint64) ([]byte, error) {
	predicted, err := symbolStream(cfg, law, ms, bits, 0, int(offset)+len(residual), maxTicks)
	if err != nil {
		return nil, err
	}
	pred := predicted[offset : offset+uint64(len(residual))]
	out := make([]byte, len(residual))
	for i := range residual {
		out[i] = residual[i] ^ pred[i]
	}
	return out, nil
}
