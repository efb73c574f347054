// Package recon packs a fitted residual (from bytecodec or bitfield)
// together with its recipe and timing map into a self-contained
// container.K8B1Blob, and inverts that packing back into the original
// bytes. It is the one place that ties a recipe, the cadence engine it
// seeds, and a residual codec's fit/reconstruct pair into a single
// portable unit.
package recon

import (
	"github.com/ark8-project/ark8/bitfield"
	"github.com/ark8-project/ark8/bytecodec"
	"github.com/ark8-project/ark8/cadence"
	"github.com/ark8-project/ark8/compress"
	"github.com/ark8-project/ark8/container"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/recipe"
	"github.com/ark8-project/ark8/stream"
)

// residualCodec lz4-compresses a K8B1Blob's residual section before it is
// stored, and decompresses it back on reconstruct. lz4 trades ratio for
// decode speed, matching the Residual field's role: it is read once per
// reconstruction and potentially many times during Merkle re-fitting.
var residualCodec = compress.NewLZ4Compressor()

// ByteOptions configures a byte-pipeline fit/reconstruct round trip.
type ByteOptions struct {
	Mode         cadence.ApplyMode
	Law          bytecodec.Law
	ResidualMode bytecodec.ResidualMode
	Seed         uint64
	MaxTicks     uint64

	// Chunked selects FitChunked (a TM1 explicit offset list) over
	// FitNonChunked (a TM0 arithmetic-progression stride).
	Chunked bool
	Chunk   bytecodec.FitChunkedOptions

	// SearchEmissions bounds the non-chunked scan window; unused when
	// Chunked is set (FitChunked derives its own window from Chunk).
	SearchEmissions int
}

// FitByteBlob fits target against r's cadence engine with the
// byte-pipeline codec and packs the result, plus r itself, into a
// K8B1Blob.
func FitByteBlob(r recipe.Recipe, target []byte, opts ByteOptions) (container.K8B1Blob, error) {
	recipeBytes, err := recipe.Encode(r)
	if err != nil {
		return container.K8B1Blob{}, err
	}
	cfg := bytecodec.EngineConfigFromRecipe(r, opts.Mode)

	base := container.ReconParams{
		MaxTicks:     opts.MaxTicks,
		MapSeed:      opts.Seed,
		ResidualMode: uint8(opts.ResidualMode),
		ByteLaw:      uint8(opts.Law),
		ApplyMode:    uint8(opts.Mode),
	}

	if !opts.Chunked {
		res, err := bytecodec.FitNonChunked(cfg, opts.Law, opts.Seed, opts.ResidualMode, target, 0, opts.SearchEmissions, opts.MaxTicks)
		if err != nil {
			return container.K8B1Blob{}, err
		}
		tm := stream.EncodeTM0(uint64(len(target)), res.Offset, 1)
		packedResidual, err := residualCodec.Compress(res.Residual)
		if err != nil {
			return container.K8B1Blob{}, err
		}
		return container.K8B1Blob{Recon: base, Recipe: recipeBytes, TimeMap: tm, Residual: packedResidual}, nil
	}

	opts.Chunk.MaxTicks = opts.MaxTicks
	offsets, residual, err := bytecodec.FitChunked(cfg, opts.Law, opts.Seed, opts.ResidualMode, target, opts.Chunk)
	if err != nil {
		return container.K8B1Blob{}, err
	}
	base.ChunkSize = uint32(opts.Chunk.ChunkSize)
	tm := stream.EncodeTM1(offsets)
	packedResidual, err := residualCodec.Compress(residual)
	if err != nil {
		return container.K8B1Blob{}, err
	}
	return container.K8B1Blob{Recon: base, Recipe: recipeBytes, TimeMap: tm, Residual: packedResidual}, nil
}

// ReconstructByteBlob inverts FitByteBlob.
func ReconstructByteBlob(blob container.K8B1Blob) ([]byte, error) {
	r, err := recipe.Decode(blob.Recipe)
	if err != nil {
		return nil, err
	}
	mode := cadence.ApplyMode(blob.Recon.ApplyMode)
	law := bytecodec.Law(blob.Recon.ByteLaw)
	residualMode := bytecodec.ResidualMode(blob.Recon.ResidualMode)
	cfg := bytecodec.EngineConfigFromRecipe(r, mode)

	if len(blob.TimeMap) < 4 {
		return nil, errs.New(errs.Truncation, errs.ErrTruncated, "empty K8B1 timing map")
	}
	residualBytes, err := residualCodec.Decompress(blob.Residual)
	if err != nil {
		return nil, err
	}

	switch [4]byte(blob.TimeMap[:4]) {
	case stream.MagicTM0:
		_, start, step, err := stream.DecodeTM0(blob.TimeMap)
		if err != nil {
			return nil, err
		}
		if step != 1 {
			return nil, errs.New(errs.Format, errs.ErrBadEncoding, "byte-pipeline TM0 timing map must have unit step")
		}
		bpe := mode.BytesPerEmission()
		need := start + uint64(len(residualBytes))
		searchEmissions := int((need + uint64(bpe) - 1) / uint64(bpe))
		raw, err := cadence.StreamBytes(cfg.Params, cfg.PhiA0, cfg.PhiC0, cfg.Model, cfg.Quant, mode, 0, searchEmissions, blob.Recon.MaxTicks)
		if err != nil {
			return nil, err
		}
		if uint64(len(raw)) < need {
			return nil, errs.New(errs.Capacity, errs.ErrTickBudget, "engine stream too short to cover timing map")
		}
		mapped := bytecodec.MapStream(law, blob.Recon.MapSeed, start, raw[start:need])
		out := make([]byte, len(residualBytes))
		for i, resid := range residualBytes {
			out[i] = bytecodec.ApplyResidualByte(residualMode, mapped[i], resid)
		}
		return out, nil

	case stream.MagicTM1:
		offsets, err := stream.DecodeTM1(blob.TimeMap)
		if err != nil {
			return nil, err
		}
		return bytecodec.ReconstructChunked(cfg, law, blob.Recon.MapSeed, residualMode, int(blob.Recon.ChunkSize), offsets, residualBytes, blob.Recon.MaxTicks)

	default:
		return nil, errs.New(errs.Format, errs.ErrBadMagic, "unrecognized K8B1 timing map encoding")
	}
}

// ContainerKind selects which bit-field container a BitOptions fit
// packs its residual symbols into.
type ContainerKind uint8

const (
	ContainerBF1 ContainerKind = iota
	ContainerBF2
)

// BitOptions configures a bit-field fit/reconstruct round trip.
// Chunk.ChunkAddK is always forced off here: EncodeBF1's own chunk-addk
// slot and FitChunked's per-chunk rotation are two independently named
// transforms, and K8B1Blob's schema has nowhere to carry FitChunked's
// addK table alongside BF1's. Callers that need the addk search should
// drive bitfield.FitChunked/EncodeBF1 directly instead of through recon.
type BitOptions struct {
	Bits      int
	Law       bitfield.MappingLaw
	MapSeed   bitfield.MapSeed
	Container ContainerKind
	MaxTicks  uint64

	Chunk bitfield.FitChunkedOptions
}

// FitBitBlob decomposes target into k-bit symbols, fits them against r's
// cadence engine with the bit-field codec, packs the resulting residual
// symbol stream into a BF1 or BF2 container, and wraps that alongside r
// and a TM1 offset list into a K8B1Blob.
func FitBitBlob(r recipe.Recipe, target []byte, opts BitOptions) (container.K8B1Blob, error) {
	recipeBytes, err := recipe.Encode(r)
	if err != nil {
		return container.K8B1Blob{}, err
	}
	cfg := bitfield.EngineConfigFromRecipe(r)

	symbols, err := bitfield.TargetSymbols(target, opts.Bits)
	if err != nil {
		return container.K8B1Blob{}, err
	}

	opts.Chunk.MaxTicks = opts.MaxTicks
	opts.Chunk.ChunkAddK = false
	offsets, residual, _, err := bitfield.FitChunked(cfg, opts.Law, opts.MapSeed, opts.Bits, symbols, opts.Chunk)
	if err != nil {
		return container.K8B1Blob{}, err
	}

	var packed []byte
	switch opts.Container {
	case ContainerBF2:
		packed, err = bitfield.EncodeBF2(opts.Bits, opts.Law, uint64(len(target)), residual)
	default:
		packed, err = bitfield.EncodeBF1(opts.Bits, opts.Law, uint64(len(target)), residual, 0, nil)
	}
	if err != nil {
		return container.K8B1Blob{}, err
	}

	recon := container.ReconParams{
		MaxTicks:        opts.MaxTicks,
		MapSeed:         opts.MapSeed.Seed,
		BitsPerEmission: uint8(opts.Bits),
		BitMapping:      uint8(opts.Law),
		BitTau:          uint32(opts.MapSeed.Tau),
		BitSmoothShift:  uint8(opts.MapSeed.SmoothShift),
		ChunkSize:       uint32(opts.Chunk.ChunkSize),
	}
	tm := stream.EncodeTM1(offsets)
	return container.K8B1Blob{Recon: recon, Recipe: recipeBytes, TimeMap: tm, Residual: packed}, nil
}

// ReconstructBitBlob inverts FitBitBlob.
func ReconstructBitBlob(blob container.K8B1Blob) ([]byte, error) {
	r, err := recipe.Decode(blob.Recipe)
	if err != nil {
		return nil, err
	}
	cfg := bitfield.EngineConfigFromRecipe(r)

	var bits int
	var law bitfield.MappingLaw
	var origLen uint64
	var residual []byte
	if len(blob.Residual) >= 4 && [4]byte(blob.Residual[:4]) == bitfield.MagicBF2 {
		bits, law, origLen, residual, err = bitfield.DecodeBF2(blob.Residual)
	} else {
		bits, law, origLen, residual, err = bitfield.DecodeBF1(blob.Residual)
	}
	if err != nil {
		return nil, err
	}

	offsets, err := stream.DecodeTM1(blob.TimeMap)
	if err != nil {
		return nil, err
	}
	ms := bitfield.MapSeed{Seed: blob.Recon.MapSeed, Tau: byte(blob.Recon.BitTau), SmoothShift: uint(blob.Recon.BitSmoothShift)}

	symbols, err := bitfield.ReconstructChunked(cfg, law, ms, bits, int(blob.Recon.ChunkSize), offsets, nil, residual, blob.Recon.MaxTicks)
	if err != nil {
		return nil, err
	}
	return bitfield.PackTargetSymbols(symbols, bits, int(origLen))
}
