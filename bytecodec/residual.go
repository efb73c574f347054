package bytecodec

import "github.com/ark8-project/ark8/stream"

// ResidualMode selects how a model byte and a plain byte combine into a
// residual, and how that residual inverts back to the plain byte.
type ResidualMode uint8

const (
	ResidualXOR ResidualMode = iota
	ResidualSub
)

// MakeResidualByte combines model and plain into one residual byte.
func MakeResidualByte(mode ResidualMode, model, plain byte) byte {
	if mode == ResidualXOR {
		return model ^ plain
	}
	return plain - model
}

// ApplyResidualByte inverts MakeResidualByte, recovering plain from model
// and resid.
func ApplyResidualByte(mode ResidualMode, model, resid byte) byte {
	if mode == ResidualXOR {
		return model ^ resid
	}
	return model + resid
}

// MakeResidual applies MakeResidualByte across an entire buffer against
// rawStream (the engine's emission bytes starting at absolute position
// modelOffset), mapping each raw byte through law/seed first and
// optionally XORing the residual with a per-position conditioning mask.
func MakeResidual(law Law, seed uint64, mode ResidualMode, modelOffset uint64, rawStream, plain []byte, condSeed uint64, tags stream.CondTags) []byte {
	mapped := MapStream(law, seed, modelOffset, rawStream)
	out := make([]byte, len(plain))
	for i, p := range plain {
		r := MakeResidualByte(mode, mapped[i], p)
		out[i] = stream.ApplyConditioning(r, condSeed, tags, uint64(i))
	}
	return out
}

// ApplyResidual inverts MakeResidual.
func ApplyResidual(law Law, seed uint64, mode ResidualMode, modelOffset uint64, rawStream, resid []byte, condSeed uint64, tags stream.CondTags) []byte {
	mapped := MapStream(law, seed, modelOffset, rawStream)
	out := make([]byte, len(resid))
	for i, r := range resid {
		unmasked := stream.ApplyConditioning(r, condSeed, tags, uint64(i))
		out[i] = ApplyResidualByte(mode, mapped[i], unmasked)
	}
	return out
}
