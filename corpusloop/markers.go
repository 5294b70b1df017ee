package corpusloop

import "strings"

// AnswerKind identifies which answer-marker form a response carries.
type AnswerKind int

const (
	// AnswerNone means the response carries no recognized marker.
	AnswerNone AnswerKind = iota
	// AnswerLiteral means FINAL(<text>); the payload is the interior text.
	AnswerLiteral
	// AnswerVariable means FINAL_VAR(<identifier>); the payload is the
	// identifier, to be resolved against the environment after block
	// execution.
	AnswerVariable
)

const (
	literalMarker  = "FINAL("
	variableMarker = "FINAL_VAR("
)

// ParseAnswerMarker recognizes the two answer-marker forms as the trailing
// content of a response (surrounding whitespace tolerated).
//
// The literal form is matched by balancing parentheses from the marker's
// opening paren and requiring the balance to first reach zero at the very
// end of the response. Anchoring to the end rather than the first closing
// paren keeps interior parentheses intact, and rejects earlier mentions of
// the marker in prose (their parens balance out before the end).
func ParseAnswerMarker(response string) (AnswerKind, string) {
	trimmed := strings.TrimRight(response, " \t\r\n")
	if trimmed == "" || !strings.HasSuffix(trimmed, ")") {
		return AnswerNone, ""
	}

	if name, ok := parseVariableMarker(trimmed); ok {
		return AnswerVariable, name
	}
	if text, ok := parseLiteralMarker(trimmed); ok {
		return AnswerLiteral, text
	}
	return AnswerNone, ""
}

// parseVariableMarker matches FINAL_VAR(<identifier>) at the end of the
// response.
func parseVariableMarker(s string) (string, bool) {
	idx := strings.LastIndex(s, variableMarker)
	if idx == -1 || !atWordBoundary(s, idx) {
		return "", false
	}
	interior := s[idx+len(variableMarker) : len(s)-1]
	interior = strings.TrimSpace(interior)
	if !isIdentifier(interior) {
		return "", false
	}
	return interior, true
}

// parseLiteralMarker matches FINAL(<text>) whose parentheses first balance
// at the end of the response. Candidates are tried from the earliest
// occurrence so the accepted interior is maximal.
func parseLiteralMarker(s string) (string, bool) {
	from := 0
	for {
		idx := strings.Index(s[from:], literalMarker)
		if idx == -1 {
			return "", false
		}
		idx += from
		from = idx + 1

		if !atWordBoundary(s, idx) {
			continue
		}

		open := idx + len(literalMarker) - 1 // position of '('
		if balancesAtEnd(s, open) {
			return s[open+1 : len(s)-1], true
		}
	}
}

// balancesAtEnd reports whether the parenthesis opened at position open
// first returns to depth zero at the last character of s.
func balancesAtEnd(s string, open int) bool {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// atWordBoundary reports whether the marker starting at idx is not embedded
// in a longer identifier (e.g. SEMIFINAL).
func atWordBoundary(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isIdentChar(s[idx-1])
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i == 0 && c >= '0' && c <= '9' {
			return false
		}
		if !isIdentChar(c) {
			return false
		}
	}
	return true
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
