// Package chunk splits text into overlapping retrieval-sized pieces.
//
// The splitter walks a fixed separator hierarchy (paragraph, line, word,
// rune) and merges the resulting pieces greedily up to the configured
// size, carrying a rune-measured overlap between consecutive chunks.
// Unlike most text splitters it never trims whitespace: stripping each
// chunk's recorded overlap prefix and concatenating the remainder
// reproduces the input byte for byte.
package chunk
