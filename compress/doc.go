// Package compress provides compression and decompression codecs for
// residual and symbol-stream payloads.
//
// This package offers multiple compression algorithms optimized for different
// characteristics of the codec's output. Compression is applied to a
// residual or packed-symbol buffer after the codec's own fit step has
// already removed most of the predictable structure, providing an
// additional layer of space savings beyond the fit itself.
//
// # Overview
//
// The codec applies a two-stage strategy:
//
//  1. **Fit**: Exploits the cadence engine's predicted stream (XOR/sub residual, bit-packing)
//  2. **Compression**: Further reduces the resulting residual using general-purpose algorithms
//
// The compress package implements the second stage, supporting multiple algorithms:
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **NoOp Compression** (CompressionNone)
//
//	codec := compress.NewNoOpCompressor()
//	compressed, _ := codec.Compress(data)  // Returns data unchanged
//	original, _ := codec.Decompress(compressed)  // Returns data unchanged
//
// Use when:
//   - Data is already well-compressed by the fit step
//   - CPU is more critical than storage
//   - Data is incompressible (random, encrypted)
//
// **Zstandard (Zstd)** (CompressionZstd)
//
//	codec := compress.NewZstdCompressor()
//	compressed, _ := codec.Compress(data)  // Best compression ratio
//	original, _ := codec.Decompress(compressed)
//
// Characteristics:
//   - Compression: Excellent (typically 2-4x on top of the fit's own residual reduction)
//   - Speed: Moderate (compression: ~400 MB/s, decompression: ~1000 MB/s)
//   - Memory: ~2-4 MB for compression, ~1-2 MB for decompression
//   - Latency: Medium (adds ~0.5-2ms for typical payloads)
//
// Best for:
//   - BF2's per-lane bitsets
//   - FitChunked's candidate-offset scoring (ObjectiveZstd)
//
// **S2 (Snappy Alternative)** (CompressionS2)
//
//	codec := compress.NewS2Compressor()
//	compressed, _ := codec.Compress(data)  // Fast with good compression
//	original, _ := codec.Decompress(compressed)
//
// Characteristics:
//   - Compression: Good (typically 1.5-2.5x on top of the fit's own residual reduction)
//   - Speed: Fast (compression: ~1000 MB/s, decompression: ~2000 MB/s)
//   - Memory: ~256KB for compression, ~64KB for decompression
//   - Latency: Low (adds ~0.2-0.5ms for typical payloads)
//
// Best for:
//   - Scoreboard's alternate-codec comparison alongside the zstd figure
//
// **LZ4** (CompressionLZ4)
//
//	codec := compress.NewLZ4Compressor()
//	compressed, _ := codec.Compress(data)  // Very fast decompression
//	original, _ := codec.Decompress(compressed)
//
// Characteristics:
//   - Compression: Moderate (typically 1.3-2x on top of the fit's own residual reduction)
//   - Speed: Very fast decompression (~3000 MB/s), moderate compression (~800 MB/s)
//   - Memory: ~64KB for compression, ~16KB for decompression
//   - Latency: Very low (adds ~0.1-0.3ms for typical payloads)
//
// Best for:
//   - The byte-pipeline residual stored in a K8B1 blob
//
// # Algorithm Selection Guide
//
// | Workload               | Recommended | Reason                         |
// |------------------------|-------------|---------------------------------|
// | Storage-constrained    | Zstd        | Best compression ratio          |
// | Query-heavy            | LZ4         | Fastest decompression           |
// | CPU-constrained        | None        | No compression overhead         |
// | Network transmission   | Zstd        | Reduce bandwidth usage          |
//
// # Memory Management
//
// The Zstd codec pools its encoders and decoders, and the LZ4 codec pools
// its compressors; S2 and NoOp keep no pooled state:
//   - Compression buffers are sized based on input
//   - Zstd sizes decompression output from the frame header; LZ4 starts
//     from a multiple of the input size and grows the buffer on demand
//   - Pooled encoders, decoders and compressors are returned after use
//
// Memory overhead:
//   - NoOp: Zero overhead
//   - LZ4: ~64KB compression, ~16KB decompression
//   - S2: ~256KB compression, ~64KB decompression
//   - Zstd: ~2-4MB compression, ~1-2MB decompression
//
// # Thread Safety
//
// All codec implementations are thread-safe and can be safely shared across goroutines.
// However, for best performance, consider using a codec per goroutine to avoid
// internal lock contention.
//
// # Error Handling
//
// Compression errors are rare but can occur:
//   - Input too large (exceeds algorithm limits)
//   - Memory allocation failure
//
// Decompression errors are more common:
//   - Corrupted compressed data
//   - Invalid compression format
//   - Decompressed size exceeds limits
//   - Checksum validation failure (algorithm-dependent)
//
// Zstd decompression errors are wrapped with context; LZ4 and S2 return the
// underlying library's errors unwrapped.
//
// # Best Practices
//
//  1. Pick the algorithm by where the payload sits in the pipeline, not by habit
//  2. Consider total cost: factor in CPU, memory, and storage together
//  3. Cache decompressors: create once, reuse many times
//
// # Advanced Usage
//
// For custom compression needs, implement the Compressor/Decompressor interfaces:
//
//	type MyCodec struct{}
//
//	func (c *MyCodec) Compress(data []byte) ([]byte, error) {
//	    // Custom compression logic
//	    return compressedData, nil
//	}
//
//	func (c *MyCodec) Decompress(data []byte) ([]byte, error) {
//	    // Custom decompression logic
//	    return originalData, nil
//	}
//
// Wrap it behind the Codec interface to plug it into container encoding.
package compress
