package cadence

import (
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/scalar"
)

// ApplyMode selects how a stream of emitted tokens is serialized into
// prediction bytes for the residual codecs: one packed byte per token, or
// a six-byte RGB expansion per token.
type ApplyMode uint8

const (
	// ApplyPair serializes one byte per emission via PairToken.PackByte.
	ApplyPair ApplyMode = iota
	// ApplyRgbPair serializes six bytes per emission via the RGB palette
	// expansion.
	ApplyRgbPair
)

// BytesPerEmission reports how many prediction bytes one token expands
// to under this apply mode.
func (m ApplyMode) BytesPerEmission() int {
	if m == ApplyRgbPair {
		return 6
	}
	return 1
}

// AppendToken serializes one token under m and appends it to buf.
func (m ApplyMode) AppendToken(buf []byte, tok PairToken) []byte {
	if m == ApplyRgbPair {
		return append(buf, ToRgbPair(tok).ToBytes()...)
	}
	return append(buf, tok.PackByte())
}

// StreamBytes drives a fresh engine for skipEmissions tokens (discarded),
// then materializes up to emissionCount further tokens serialized under
// mode, stopping early if maxTicks is exhausted. It returns the bytes
// produced so far alongside any error, so a partial buffer is still
// available to a caller on capacity failure.
func StreamBytes(params Params, phiA0, phiC0 scalar.Turn, model field.Model, quant QuantParams, mode ApplyMode, skipEmissions, emissionCount int, maxTicks uint64) ([]byte, error) {
	e := NewEngine(params, phiA0, phiC0)
	var ticks uint64

	for skipped := 0; skipped < skipEmissions; {
		if maxTicks > 0 && ticks >= maxTicks {
			return nil, errs.New(errs.Capacity, errs.ErrTickBudget, "exceeded max ticks before skipping to start emission")
		}
		_, ok := e.StepWithField(model, quant)
		ticks++
		if ok {
			skipped++
		}
	}

	out := make([]byte, 0, emissionCount*mode.BytesPerEmission())
	for produced := 0; produced < emissionCount; {
		if maxTicks > 0 && ticks >= maxTicks {
			return out, errs.New(errs.Capacity, errs.ErrTickBudget, "exceeded max ticks before reaching requested emission count")
		}
		tok, ok := e.StepWithField(model, quant)
		ticks++
		if ok {
			out = mode.AppendToken(out, tok)
			produced++
		}
	}
	return out, nil
}
