package pyscan

import (
	"bytes"
	"strings"
)

// DefaultPrefixBytes is the bounded-prefix fast path size.
const DefaultPrefixBytes = 64 * 1024

var importNeedle = []byte("import")

// Scan extracts all import records from a complete source buffer.
// The buffer is never executed. A malformed import statement returns
// a *SyntaxError and no records.
func Scan(src []byte) ([]ImportRecord, error) {
	recs, _, err := scan(src)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// ScanWithPrefix scans src, attempting a bounded-prefix fast path
// first. The prefix result is used only when it is provably identical
// to a full scan: the prefix must end at a clean statement boundary
// and the remaining bytes must contain no "import" sequence (which
// also covers __import__ and importlib.import_module). Otherwise the
// whole buffer is scanned.
func ScanWithPrefix(src []byte, prefixLen int) ([]ImportRecord, error) {
	if prefixLen <= 0 || len(src) <= prefixLen {
		return Scan(src)
	}
	if bytes.Contains(src[prefixLen:], importNeedle) {
		return Scan(src)
	}
	recs, lx, err := scan(src[:prefixLen])
	if err == nil && lx.complete() {
		return recs, nil
	}
	return Scan(src)
}

type parser struct {
	lx   *lexer
	tok  token
	recs []ImportRecord
}

func scan(src []byte) ([]ImportRecord, *lexer, error) {
	lx := newLexer(src)
	p := &parser{lx: lx}
	p.advance()
	for p.tok.kind != tokEOF {
		switch {
		case p.tok.kind == tokNewline, p.tok.kind == tokOp && p.tok.text == ";":
			p.advance()
		case p.tok.kind == tokName && p.tok.text == "import":
			if err := p.parseImport(); err != nil {
				return nil, lx, err
			}
		case p.tok.kind == tokName && p.tok.text == "from":
			if err := p.parseFrom(); err != nil {
				return nil, lx, err
			}
		default:
			p.skipStatement()
		}
	}
	return p.recs, lx, nil
}

func (p *parser) advance() {
	p.tok = p.lx.next()
}

func (p *parser) fail(msg string) *SyntaxError {
	return &SyntaxError{Line: p.tok.line, Msg: msg}
}

func (p *parser) isOp(text string) bool {
	return p.tok.kind == tokOp && p.tok.text == text
}

// dottedName consumes NAME ('.' NAME)* and returns the joined path.
func (p *parser) dottedName() (string, *SyntaxError) {
	if p.tok.kind != tokName {
		return "", p.fail("expected module name")
	}
	var parts []string
	parts = append(parts, p.tok.text)
	p.advance()
	for p.isOp(".") {
		p.advance()
		if p.tok.kind != tokName {
			return "", p.fail("expected name after '.'")
		}
		parts = append(parts, p.tok.text)
		p.advance()
	}
	return strings.Join(parts, "."), nil
}

// endStatement expects the current statement to be over.
func (p *parser) endStatement() *SyntaxError {
	switch {
	case p.tok.kind == tokEOF:
		return nil
	case p.tok.kind == tokNewline, p.isOp(";"):
		p.advance()
		return nil
	}
	return p.fail("unexpected token after import statement")
}

// parseImport handles "import a.b [as c][, d.e]".
func (p *parser) parseImport() *SyntaxError {
	line := p.tok.line
	depth := p.lx.depth
	p.advance()
	for {
		mod, err := p.dottedName()
		if err != nil {
			return err
		}
		p.recs = append(p.recs, ImportRecord{Module: mod, Line: line, Depth: depth})
		if p.tok.kind == tokName && p.tok.text == "as" {
			p.advance()
			if p.tok.kind != tokName {
				return p.fail("expected name after 'as'")
			}
			p.advance()
		}
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return p.endStatement()
}

// parseFrom handles "from [dots][a.b] import x [as y][, z] | * | (...)".
func (p *parser) parseFrom() *SyntaxError {
	line := p.tok.line
	depth := p.lx.depth
	p.advance()

	level := 0
	for p.isOp(".") {
		level++
		p.advance()
	}

	module := ""
	if p.tok.kind == tokName && p.tok.text != "import" {
		m, err := p.dottedName()
		if err != nil {
			return err
		}
		module = m
	}
	if level == 0 && module == "" {
		return p.fail("expected module name after 'from'")
	}
	if !(p.tok.kind == tokName && p.tok.text == "import") {
		return p.fail("expected 'import' in from-statement")
	}
	p.advance()

	rec := ImportRecord{Module: module, Level: level, Line: line, IsFrom: true, Depth: depth}

	if p.isOp("*") {
		rec.Names = []string{"*"}
		p.advance()
		p.recs = append(p.recs, rec)
		return p.endStatement()
	}

	paren := p.isOp("(")
	if paren {
		p.advance()
	}
	for {
		if paren && p.isOp(")") {
			// trailing comma
			break
		}
		if p.tok.kind != tokName {
			return p.fail("expected imported name")
		}
		rec.Names = append(rec.Names, p.tok.text)
		p.advance()
		if p.tok.kind == tokName && p.tok.text == "as" {
			p.advance()
			if p.tok.kind != tokName {
				return p.fail("expected name after 'as'")
			}
			p.advance()
		}
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	if paren {
		if !p.isOp(")") {
			return p.fail("unclosed import name list")
		}
		p.advance()
	}
	p.recs = append(p.recs, rec)
	return p.endStatement()
}

// skipStatement consumes tokens through the end of the current
// statement, recording __import__ and importlib.import_module calls
// seen along the way.
func (p *parser) skipStatement() {
	for {
		switch {
		case p.tok.kind == tokEOF:
			return
		case p.tok.kind == tokNewline, p.isOp(";"):
			p.advance()
			return
		case p.tok.kind == tokName && p.tok.text == "__import__":
			p.dynamicCall()
		case p.tok.kind == tokName && p.tok.text == "importlib":
			p.advance()
			if p.isOp(".") {
				p.advance()
				if p.tok.kind == tokName && p.tok.text == "import_module" {
					p.dynamicCall()
				}
			}
		default:
			p.advance()
		}
	}
}

// dynamicCall records an import-like call. A plain string-literal
// argument yields a normal record; anything computed is tagged
// dynamic so resolution never guesses at it.
func (p *parser) dynamicCall() {
	line := p.tok.line
	depth := p.lx.depth
	p.advance()
	if !p.isOp("(") {
		return
	}
	p.advance()
	if p.tok.kind == tokString && p.tok.literal {
		mod := p.tok.text
		p.advance()
		if p.isOp(")") || p.isOp(",") {
			p.recs = append(p.recs, ImportRecord{Module: mod, Line: line, Depth: depth})
			return
		}
		// string concatenation or similar, target is computed
	}
	p.recs = append(p.recs, ImportRecord{Line: line, Depth: depth, Dynamic: true})
}
