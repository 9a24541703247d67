package chunker

import (
	"strings"
	"unicode/utf8"
)

// Separators tried in order: paragraph, line, word, then a hard character
// cut. Matches the splitter configuration of the reference deployment.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter produces overlapping fixed-size chunks from document text using a
// recursive character splitter: it prefers to break at coarse boundaries and
// only falls back to finer ones when a piece is still larger than ChunkSize.
// Output is deterministic and order-preserving (chunk index = position in the
// source text).
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 200
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the ordered chunk sequence for text. Empty input yields no
// chunks; input shorter than ChunkSize yields exactly one chunk.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	// Pick the first separator that occurs in the text; "" always matches.
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, sp := range splits {
		if utf8.RuneCountInString(sp) < s.ChunkSize {
			good = append(good, sp)
			continue
		}
		// Oversized piece: flush what we have, then recurse with the
		// finer separators.
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, sp)
		} else {
			final = append(final, s.splitText(sp, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

// merge greedily packs splits into chunks of at most ChunkSize characters,
// then carries a tail of up to ChunkOverlap characters into the next chunk so
// context spanning a boundary is not lost.
func (s *Splitter) merge(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var docs []string
	var current []string
	total := 0

	for _, d := range splits {
		l := utf8.RuneCountInString(d)
		if total+l+sepLenIf(sepLen, len(current) > 0) > s.ChunkSize && len(current) > 0 {
			if doc := joinSplits(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			// Drop from the front until the retained tail fits under the
			// overlap budget and the incoming split fits in the chunk.
			for total > s.ChunkOverlap ||
				(total+l+sepLenIf(sepLen, len(current) > 0) > s.ChunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0]) + sepLenIf(sepLen, len(current) > 1)
				current = current[1:]
			}
		}
		current = append(current, d)
		total += l + sepLenIf(sepLen, len(current) > 1)
	}
	if doc := joinSplits(current, separator); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	var out []string
	for _, sp := range strings.Split(text, separator) {
		if sp != "" {
			out = append(out, sp)
		}
	}
	return out
}

func joinSplits(parts []string, separator string) string {
	return strings.TrimSpace(strings.Join(parts, separator))
}

func sepLenIf(sepLen int, cond bool) int {
	if cond {
		return sepLen
	}
	return 0
}
