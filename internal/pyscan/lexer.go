package pyscan

import "strings"

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokName
	tokString
	tokOp
)

type token struct {
	kind tokKind
	text string // identifier text, operator text, or string contents
	line int
	// literal marks a string token that is a plain literal, usable as a
	// static module name. False for f-strings.
	literal bool
}

// lexer walks Python source bytes producing just enough tokens to
// recognize import statements. Strings and comments are consumed so
// their contents can never be misread as keywords. Newlines inside
// brackets and after backslash continuations are swallowed, so a
// tokNewline always marks a logical statement boundary.
type lexer struct {
	src  []byte
	pos  int
	line int

	parens   int   // bracket nesting across (), [], {}
	indents  []int // indentation stack, block depth = len(indents)-1
	depth    int   // block depth of the statement being lexed
	atStart  bool  // positioned at the start of a logical line
	unclosed bool  // hit EOF inside a triple-quoted string
}

func newLexer(src []byte) *lexer {
	return &lexer{
		src:     src,
		line:    1,
		indents: []int{0},
		atStart: true,
	}
}

func (l *lexer) next() token {
	for {
		if l.atStart && l.parens == 0 {
			l.handleIndent()
		}
		if l.pos >= len(l.src) {
			return token{kind: tokEOF, line: l.line}
		}
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '\n':
			l.pos++
			ln := l.line
			l.line++
			if l.parens > 0 {
				continue
			}
			l.atStart = true
			return token{kind: tokNewline, line: ln}
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '\\':
			// explicit line continuation
			l.pos++
			if l.pos < len(l.src) && l.src[l.pos] == '\r' {
				l.pos++
			}
			if l.pos < len(l.src) && l.src[l.pos] == '\n' {
				l.pos++
				l.line++
			}
		case c == '(' || c == '[' || c == '{':
			l.parens++
			l.pos++
			return token{kind: tokOp, text: string(c), line: l.line}
		case c == ')' || c == ']' || c == '}':
			if l.parens > 0 {
				l.parens--
			}
			l.pos++
			return token{kind: tokOp, text: string(c), line: l.line}
		case c == '\'' || c == '"':
			return l.scanString(false)
		case isNameStart(c):
			return l.scanName()
		case c >= '0' && c <= '9':
			l.scanNumber()
		default:
			l.pos++
			return token{kind: tokOp, text: string(c), line: l.line}
		}
	}
}

func (l *lexer) handleIndent() {
	for {
		col := 0
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c == ' ' {
				col++
				l.pos++
			} else if c == '\t' {
				col += 8 - col%8
				l.pos++
			} else {
				break
			}
		}
		if l.pos >= len(l.src) {
			l.atStart = false
			return
		}
		switch l.src[l.pos] {
		case '\n':
			l.pos++
			l.line++
			continue
		case '\r':
			l.pos++
			continue
		case '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		// a real statement starts here; adjust the indent stack
		top := l.indents[len(l.indents)-1]
		if col > top {
			l.indents = append(l.indents, col)
		} else {
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > col {
				l.indents = l.indents[:len(l.indents)-1]
			}
		}
		l.depth = len(l.indents) - 1
		l.atStart = false
		return
	}
}

func (l *lexer) scanName() token {
	start := l.pos
	ln := l.line
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.pos++
	}
	name := string(l.src[start:l.pos])
	if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') && isStringPrefix(name) {
		return l.scanString(strings.ContainsAny(name, "fF"))
	}
	return token{kind: tokName, text: name, line: ln}
}

// scanString consumes a string literal, handling single, triple-quoted,
// and escape forms. An unterminated single-quoted string ends at the
// line break; an unterminated triple-quoted string runs to EOF and
// marks the lexer unclosed.
func (l *lexer) scanString(fstr bool) token {
	q := l.src[l.pos]
	ln := l.line
	triple := false
	if l.pos+2 < len(l.src) && l.src[l.pos+1] == q && l.src[l.pos+2] == q {
		triple = true
		l.pos += 3
	} else {
		l.pos++
	}
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
				l.line++
			}
			l.pos += 2
		case c == '\n':
			if !triple {
				return token{kind: tokString, text: string(l.src[start:l.pos]), line: ln, literal: !fstr}
			}
			l.line++
			l.pos++
		case c == q:
			if triple {
				if l.pos+2 < len(l.src) && l.src[l.pos+1] == q && l.src[l.pos+2] == q {
					val := string(l.src[start:l.pos])
					l.pos += 3
					return token{kind: tokString, text: val, line: ln, literal: !fstr}
				}
				l.pos++
				continue
			}
			val := string(l.src[start:l.pos])
			l.pos++
			return token{kind: tokString, text: val, line: ln, literal: !fstr}
		default:
			l.pos++
		}
	}
	if triple {
		l.unclosed = true
	}
	end := l.pos
	if end > len(l.src) {
		end = len(l.src)
	}
	return token{kind: tokString, text: string(l.src[start:end]), line: ln, literal: !fstr}
}

func (l *lexer) scanNumber() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '.' || c == '_' {
			l.pos++
		} else {
			break
		}
	}
}

// complete reports whether the buffer ends at a clean statement
// boundary: not inside a string or bracket nesting, no pending
// backslash continuation, and the final byte is a line break. Only
// then is a truncated scan guaranteed to see every statement whole.
func (l *lexer) complete() bool {
	if l.unclosed || l.parens != 0 {
		return false
	}
	n := len(l.src)
	if n == 0 {
		return true
	}
	if l.src[n-1] != '\n' {
		return false
	}
	if n >= 2 && l.src[n-2] == '\\' {
		return false
	}
	if n >= 3 && l.src[n-2] == '\r' && l.src[n-3] == '\\' {
		return false
	}
	return true
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isStringPrefix(name string) bool {
	if len(name) == 0 || len(name) > 2 {
		return false
	}
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return true
}
