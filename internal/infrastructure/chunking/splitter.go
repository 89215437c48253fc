package chunking

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

// Splitter cuts document text into overlapping token windows. Tokens are
// runs of letters/digits plus standalone punctuation runes, so counting is
// whitespace and punctuation aware while staying fully deterministic.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "chunker",
			fmt.Errorf("chunk size must be positive, got %d", chunkSize))
	}
	if overlap < 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "chunker",
			fmt.Errorf("overlap must be non-negative, got %d", overlap))
	}
	if overlap >= chunkSize {
		return nil, domain.WrapError(domain.ErrConfiguration, "chunker",
			fmt.Errorf("overlap %d must be smaller than chunk size %d", overlap, chunkSize))
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split is a pure function: the same text always yields the same chunk
// sequence. Windows advance by chunkSize-overlap tokens; the final window may
// be shorter but never empty. Chunk content is the original text span from
// the window's first to last token, so surrounding whitespace is preserved
// inside a chunk and nothing is synthesized.
func (s *Splitter) Split(text string) []domain.Chunk {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	out := make([]domain.Chunk, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, domain.Chunk{
			Index:      len(out),
			Content:    text[tokens[start].start:tokens[end-1].end],
			TokenCount: end - start,
		})
		if end == len(tokens) {
			break
		}
	}
	return out
}

// span is a byte range of one token within the source text.
type span struct {
	start int
	end   int
}

func tokenize(text string) []span {
	tokens := make([]span, 0, len(text)/5+1)
	wordStart := -1
	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if wordStart < 0 {
				wordStart = i
			}
		case unicode.IsSpace(r):
			if wordStart >= 0 {
				tokens = append(tokens, span{start: wordStart, end: i})
				wordStart = -1
			}
		default:
			// Punctuation and symbols count as single tokens.
			if wordStart >= 0 {
				tokens = append(tokens, span{start: wordStart, end: i})
				wordStart = -1
			}
			tokens = append(tokens, span{start: i, end: i + utf8.RuneLen(r)})
		}
	}
	if wordStart >= 0 {
		tokens = append(tokens, span{start: wordStart, end: len(text)})
	}
	return tokens
}
