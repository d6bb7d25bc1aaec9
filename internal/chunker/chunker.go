// Package chunker splits conversation text into overlapping chunks for embedding.
package chunker

import (
	"strings"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Options configures chunking behavior. Overlap must be smaller than
// ChunkSize so that every window advances.
type Options struct {
	ChunkSize int
	Overlap   int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// sentence-ending sequences searched for when shrinking a window
var boundaries = []string{". ", "? ", "! "}

// Chunk splits text into overlapping segments of at most ChunkSize characters.
// Windows that do not reach the end of the text prefer to end right after
// sentence-ending punctuation. Short text (<= ChunkSize) returns a single chunk.
func Chunk(text string, opts Options) []string {
	if opts.ChunkSize <= 0 {
		opts = DefaultOptions()
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.ChunkSize {
		opts.Overlap = opts.ChunkSize - 1
	}

	if len(text) == 0 {
		return nil
	}
	if len(text) <= opts.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + opts.ChunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		// Prefer to break right after the latest sentence boundary in the
		// window. A boundary at or before the overlap distance would stop the
		// next window from advancing, so fall back to the raw cut instead.
		if cut := lastBoundary(text[start:end]); cut > opts.Overlap {
			end = start + cut
		}

		chunks = append(chunks, text[start:end])
		start = end - opts.Overlap
	}

	return chunks
}

// lastBoundary returns the index just past the latest sentence-ending
// punctuation+space in window, or -1 if there is none.
func lastBoundary(window string) int {
	latest := -1
	for _, b := range boundaries {
		if i := strings.LastIndex(window, b); i > latest {
			latest = i
		}
	}
	if latest == -1 {
		return -1
	}
	return latest + 2 // include the punctuation and the space
}
