package transcript

import (
	"strconv"
	"strings"
)

// TokenKind distinguishes literal transcript text from fill-in blanks.
type TokenKind string

const (
	KindText  TokenKind = "text"
	KindBlank TokenKind = "blank"
)

const blankInfix = "_blank_"

// Token is one piece of a parsed transcript. For blanks, Content holds the
// canonical answer exactly as written between the brackets.
type Token struct {
	Kind    TokenKind `json:"type"`
	Content string    `json:"content"`
	BlankID string    `json:"blankId,omitempty"`
}

// IsBlank reports whether the token is a fill-in position.
func (t Token) IsBlank() bool {
	return t.Kind == KindBlank
}

// Parse splits a raw transcript into literal and blank tokens. Each
// "[answer]" span becomes a blank with id "{segmentID}_blank_{n}", numbered
// from zero in order of appearance. An opening bracket without a closing one
// turns the rest of the text into a literal; Parse never fails.
func Parse(raw, segmentID string) []Token {
	var tokens []Token
	ordinal := 0
	literalStart := 0
	pos := 0

	for pos < len(raw) {
		open := strings.IndexByte(raw[pos:], '[')
		if open < 0 {
			break
		}
		open += pos
		end := strings.IndexByte(raw[open+1:], ']')
		if end < 0 {
			// unterminated: everything left is literal
			break
		}
		end += open + 1
		answer := raw[open+1 : end]
		if answer == "" {
			// "[]" carries no answer; keep it as text
			pos = end + 1
			continue
		}
		if open > literalStart {
			tokens = append(tokens, Token{Kind: KindText, Content: raw[literalStart:open]})
		}
		tokens = append(tokens, Token{
			Kind:    KindBlank,
			Content: answer,
			BlankID: BlankID(segmentID, ordinal),
		})
		ordinal++
		pos = end + 1
		literalStart = pos
	}

	if literalStart < len(raw) {
		tokens = append(tokens, Token{Kind: KindText, Content: raw[literalStart:]})
	}
	return tokens
}

// Blanks returns only the blank tokens, in document order.
func Blanks(tokens []Token) []Token {
	blanks := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsBlank() {
			blanks = append(blanks, tok)
		}
	}
	return blanks
}

// Reconstruct joins token contents back into the transcript with the
// answer brackets removed.
func Reconstruct(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Content)
	}
	return b.String()
}

// BlankID builds the stable identifier of the n-th blank of a segment.
func BlankID(segmentID string, ordinal int) string {
	return segmentID + blankInfix + strconv.Itoa(ordinal)
}

// SplitBlankID is the inverse of BlankID. The last "_blank_" wins so that
// segment ids containing the infix still split correctly.
func SplitBlankID(blankID string) (segmentID string, ordinal int, ok bool) {
	i := strings.LastIndex(blankID, blankInfix)
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(blankID[i+len(blankInfix):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return blankID[:i], n, true
}
