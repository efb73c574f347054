// Package merkle implements a recursive Merkle driver, proving that the
// codec can apply itself to its own output: it splits a byte buffer into
// fixed-size leaf chunks, wraps each into a container.K8B1Blob via the
// byte-pipeline codec, and recursively pairs neighboring blobs with
// container.K8P2Pair, running the same byte-pipeline codec over the
// *bytes of the pair container itself* until a single blob remains.
package merkle

import (
	"github.com/ark8-project/ark8/container"
	"github.com/ark8-project/ark8/recipe"
	"github.com/ark8-project/ark8/recon"
)

// Build splits data into chunkBytes-sized leaves (the last one may be
// shorter), fits each leaf against r's cadence engine, then repeatedly
// pairs neighboring blobs and fits the pair container's own bytes,
// until one blob remains. An odd blob out at any level is carried
// forward unpaired rather than padded.
func Build(r recipe.Recipe, data []byte, chunkBytes int, opts recon.ByteOptions) (container.ARKM1Root, error) {
	if chunkBytes <= 0 {
		chunkBytes = len(data)
	}
	if chunkBytes <= 0 {
		return container.ARKM1Root{OriginalLen: 0, ChunkBytes: 0, LeafCount: 0, RootBlob: nil}, nil
	}

	var level [][]byte
	for i := 0; i < len(data); i += chunkBytes {
		end := i + chunkBytes
		if end > len(data) {
			end = len(data)
		}
		blob, err := recon.FitByteBlob(r, data[i:end], opts)
		if err != nil {
			return container.ARKM1Root{}, err
		}
		level = append(level, blob.Encode())
	}
	leafCount := len(level)

	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			pairBytes := container.K8P2Pair{A: level[i], B: level[i+1]}.Encode()
			blob, err := recon.FitByteBlob(r, pairBytes, opts)
			if err != nil {
				return container.ARKM1Root{}, err
			}
			next = append(next, blob.Encode())
		}
		level = next
	}

	var rootBlob []byte
	if len(level) == 1 {
		rootBlob = level[0]
	}
	return container.ARKM1Root{
		OriginalLen: uint64(len(data)),
		ChunkBytes:  uint32(chunkBytes),
		LeafCount:   uint32(leafCount),
		RootBlob:    rootBlob,
	}, nil
}

// Reconstruct inverts Build, recovering the original bytes.
func Reconstruct(root container.ARKM1Root) ([]byte, error) {
	if len(root.RootBlob) == 0 {
		return nil, nil
	}
	return unwind(root.RootBlob)
}

// unwind decodes one K8B1 blob and reconstructs its bytes. If those
// bytes are themselves a K8P2Pair, it recurses into both children and
// concatenates their reconstructions; otherwise the blob was a leaf and
// its reconstructed bytes are the answer.
func unwind(blobBytes []byte) ([]byte, error) {
	blob, err := container.DecodeK8B1(blobBytes)
	if err != nil {
		return nil, err
	}
	data, err := recon.ReconstructByteBlob(blob)
	if err != nil {
		return nil, err
	}

	pair, perr := container.DecodeK8P2(data)
	if perr != nil {
		return data, nil
	}

	left, err := unwind(pair.A)
	if err != nil {
		return nil, err
	}
	right, err := unwind(pair.B)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}
