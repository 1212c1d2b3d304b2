// Package textsplit cuts page text into overlapping chunks for embedding.
//
// The splitter tries separators from coarse to fine ("\n\n", "\n", " ", "")
// and only descends to a finer one when a piece is still longer than the
// chunk size. Adjacent pieces are then merged back up to the chunk size with
// a trailing window of at most Overlap runes repeated in the next chunk.
// Lengths are counted in runes.
package textsplit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) (*RecursiveSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", overlap, chunkSize)
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split returns the chunks of text in document order. Blank input yields no
// chunks.
func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, finer)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge joins pieces (which already carry their separators) into chunks no
// longer than chunkSize.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepingSeparator splits text on sep and prefixes every piece after the
// first with the separator. An empty sep splits into runes.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
