// Package scanner turns IFJ25 source text into a stream of classified tokens.
package scanner

type Scanner struct {
	b []byte
	i int

	line, col int
}

var keywords = map[string]Kind{
	"class":  Class,
	"if":     If,
	"else":   Else,
	"is":     Is,
	"null":   Null,
	"return": Return,
	"var":    Var,
	"while":  While,
	"Ifj":    IfjNamespace,
	"static": Static,
	"import": Import,
	"for":    For,
	"Num":    NumType,
	"String": StringType,
	"Null":   NullType,
}

func New(src []byte) *Scanner {
	return &Scanner{b: src, line: 1, col: 1}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (s *Scanner) Next() Token {
	s.skipSpace()

	if s.i >= len(s.b) {
		return Token{Kind: EOF, Line: s.line, Col: s.col}
	}

	line, col := s.line, s.col
	c := s.b[s.i]

	switch {
	case isAlpha(c) || c == '_':
		return s.readIdent(line, col)
	case isDigit(c):
		return s.readNumber(line, col)
	case c == '"':
		return s.readString(line, col)
	}

	s.advance()

	switch c {
	case '\n':
		return Token{Kind: EOL, Line: line, Col: col}
	case '+':
		return Token{Kind: Plus, Line: line, Col: col}
	case '-':
		return Token{Kind: Minus, Line: line, Col: col}
	case '*':
		return Token{Kind: Star, Line: line, Col: col}
	case '/':
		return Token{Kind: Slash, Line: line, Col: col}
	case '=':
		if s.cur() == '=' {
			s.advance()
			return Token{Kind: Eq, Line: line, Col: col}
		}

		return Token{Kind: Assign, Line: line, Col: col}
	case '<':
		if s.cur() == '=' {
			s.advance()
			return Token{Kind: LessEq, Line: line, Col: col}
		}

		return Token{Kind: Less, Line: line, Col: col}
	case '>':
		if s.cur() == '=' {
			s.advance()
			return Token{Kind: GreaterEq, Line: line, Col: col}
		}

		return Token{Kind: Greater, Line: line, Col: col}
	case '!':
		if s.cur() == '=' {
			s.advance()
			return Token{Kind: NotEq, Line: line, Col: col}
		}

		return Token{Kind: Not, Line: line, Col: col}
	case '(':
		return Token{Kind: LParen, Line: line, Col: col}
	case ')':
		return Token{Kind: RParen, Line: line, Col: col}
	case '{':
		return Token{Kind: LBrace, Line: line, Col: col}
	case '}':
		return Token{Kind: RBrace, Line: line, Col: col}
	case ',':
		return Token{Kind: Comma, Line: line, Col: col}
	case '.':
		if s.cur() == '.' && s.at(1) == '.' {
			s.advance()
			s.advance()
			return Token{Kind: RangeIncl, Line: line, Col: col}
		}

		if s.cur() == '.' {
			s.advance()
			return Token{Kind: RangeExcl, Line: line, Col: col}
		}

		return Token{Kind: Dot, Line: line, Col: col}
	case ':':
		return Token{Kind: Colon, Line: line, Col: col}
	case '?':
		return Token{Kind: Question, Line: line, Col: col}
	case '&':
		if s.cur() == '&' {
			s.advance()
			return Token{Kind: And, Line: line, Col: col}
		}
	case '|':
		if s.cur() == '|' {
			s.advance()
			return Token{Kind: Or, Line: line, Col: col}
		}
	}

	// the Error token carries the one offending character
	return Token{Kind: Error, Text: string(c), Line: line, Col: col}
}

func (s *Scanner) readIdent(line, col int) Token {
	st := s.i

	kind := Ident
	if s.b[s.i] == '_' && s.at(1) == '_' {
		kind = GlobalIdent
		s.advance()
		s.advance()
	}

	for s.i < len(s.b) && (isAlnum(s.b[s.i]) || s.b[s.i] == '_') {
		s.advance()
	}

	text := string(s.b[st:s.i])

	if kind == Ident {
		if kw, ok := keywords[text]; ok {
			return Token{Kind: kw, Text: text, Line: line, Col: col}
		}
	}

	return Token{Kind: kind, Text: text, Line: line, Col: col}
}

func (s *Scanner) readNumber(line, col int) Token {
	st := s.i

	if s.b[s.i] == '0' && (s.at(1) == 'x' || s.at(1) == 'X') {
		s.advance()
		s.advance()

		for s.i < len(s.b) && isHex(s.b[s.i]) {
			s.advance()
		}

		return Token{Kind: IntLit, Text: string(s.b[st:s.i]), Line: line, Col: col}
	}

	float := false

	for s.i < len(s.b) && isDigit(s.b[s.i]) {
		s.advance()
	}

	if s.cur() == '.' && isDigit(s.at(1)) {
		float = true
		s.advance()

		for s.i < len(s.b) && isDigit(s.b[s.i]) {
			s.advance()
		}
	}

	if s.cur() == 'e' || s.cur() == 'E' {
		float = true
		s.advance()

		if s.cur() == '+' || s.cur() == '-' {
			s.advance()
		}

		for s.i < len(s.b) && isDigit(s.b[s.i]) {
			s.advance()
		}
	}

	kind := IntLit
	if float {
		kind = FloatLit
	}

	return Token{Kind: kind, Text: string(s.b[st:s.i]), Line: line, Col: col}
}

func (s *Scanner) readString(line, col int) Token {
	if s.at(1) == '"' && s.at(2) == '"' {
		return s.readMultilineString(line, col)
	}

	s.advance() // opening quote

	var text []byte

	for s.i < len(s.b) && s.b[s.i] != '"' && s.b[s.i] != '\n' {
		if s.b[s.i] == '\\' {
			text = append(text, s.readEscape())
			continue
		}

		text = append(text, s.b[s.i])
		s.advance()
	}

	if s.cur() == '"' {
		s.advance() // closing quote
	}

	return Token{Kind: StringLit, Text: string(text), Line: line, Col: col}
}

// Triple-quoted strings span lines and are exempt from escape processing.
func (s *Scanner) readMultilineString(line, col int) Token {
	s.advance()
	s.advance()
	s.advance()

	st := s.i

	for s.i < len(s.b) {
		if s.b[s.i] == '"' && s.at(1) == '"' && s.at(2) == '"' {
			text := string(s.b[st:s.i])

			s.advance()
			s.advance()
			s.advance()

			return Token{Kind: MultilineStringLit, Text: text, Line: line, Col: col}
		}

		s.advance()
	}

	return Token{Kind: MultilineStringLit, Text: string(s.b[st:s.i]), Line: line, Col: col}
}

func (s *Scanner) readEscape() byte {
	s.advance() // backslash

	c := s.cur()

	switch c {
	case 'n':
		s.advance()
		return '\n'
	case 'r':
		s.advance()
		return '\r'
	case 't':
		s.advance()
		return '\t'
	case '\\':
		s.advance()
		return '\\'
	case '"':
		s.advance()
		return '"'
	case 'x':
		s.advance()

		var v byte

		for j := 0; j < 2 && isHex(s.cur()); j++ {
			v = v<<4 | hexVal(s.cur())
			s.advance()
		}

		return v
	default:
		s.advance()
		return c
	}
}

func (s *Scanner) skipSpace() {
	for s.i < len(s.b) {
		c := s.b[s.i]

		if c == ' ' || c == '\t' || c == '\r' {
			s.advance()
			continue
		}

		if c == '/' && s.at(1) == '/' {
			for s.i < len(s.b) && s.b[s.i] != '\n' {
				s.advance()
			}

			// a line comment swallows its terminating newline
			if s.cur() == '\n' {
				s.advance()
			}

			continue
		}

		if c == '/' && s.at(1) == '*' {
			s.skipBlockComment()
			continue
		}

		break
	}
}

// Block comments nest.
func (s *Scanner) skipBlockComment() {
	s.advance()
	s.advance()

	nesting := 1

	for nesting > 0 && s.i < len(s.b) {
		switch {
		case s.b[s.i] == '/' && s.at(1) == '*':
			nesting++
			s.advance()
			s.advance()
		case s.b[s.i] == '*' && s.at(1) == '/':
			nesting--
			s.advance()
			s.advance()
		default:
			s.advance()
		}
	}
}

func (s *Scanner) advance() {
	if s.i >= len(s.b) {
		return
	}

	if s.b[s.i] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.i++
}

func (s *Scanner) cur() byte {
	return s.at(0)
}

func (s *Scanner) at(off int) byte {
	if s.i+off >= len(s.b) {
		return 0
	}

	return s.b[s.i+off]
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }
func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
