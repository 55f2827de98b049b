package engine

import "strings"

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites icon script source into something zygomys
// accepts:
//
//   - :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols and cannot collide with user variables.
//   - kebab-case identifiers become snake_case (corner-radius ->
//     corner_radius); zygomys would read the hyphen as subtraction.
//   - ; and ;; line comments become // comments.
//
// String literals, both "..." and `...`, pass through untouched.
func preprocessSource(source string) string {
	s := scanner{src: source}
	s.out.Grow(len(source) + len(source)/4)
	for !s.done() {
		switch c := s.peek(0); {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek(1) == '=':
			s.copyN(2)
		case c == ':' && isLetter(s.peek(1)):
			s.keyword()
		case c == '-' && s.pos > 0 && isIdentChar(s.src[s.pos-1]) && isLetter(s.peek(1)):
			s.out.WriteByte('_')
			s.pos++
		default:
			s.copyN(1)
		}
	}
	return s.out.String()
}

// scanner walks the source one byte at a time, writing the rewritten text
// to out.
type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

// peek returns the byte at pos+off, or 0 past the end.
func (s *scanner) peek(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) copyN(n int) {
	end := min(s.pos+n, len(s.src))
	s.out.WriteString(s.src[s.pos:end])
	s.pos = end
}

// quoted copies a string literal including both delimiters. An unterminated
// literal runs to the end of the source.
func (s *scanner) quoted(delim byte, escapes bool) {
	s.copyN(1)
	for !s.done() {
		c := s.peek(0)
		if escapes && c == '\\' {
			s.copyN(2)
			continue
		}
		s.copyN(1)
		if c == delim {
			return
		}
	}
}

// comment rewrites a run of semicolons to // and copies the rest of the line.
func (s *scanner) comment() {
	for s.peek(0) == ';' {
		s.pos++
	}
	s.out.WriteString("//")
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src) - s.pos
	}
	s.copyN(end)
}

// keyword rewrites :name to "__kw_name". Keyword names may contain hyphens.
func (s *scanner) keyword() {
	s.pos++ // colon
	start := s.pos
	for !s.done() && isKWChar(s.peek(0)) {
		s.pos++
	}
	s.out.WriteByte('"')
	s.out.WriteString(kwPrefix)
	s.out.WriteString(s.src[start:s.pos])
	s.out.WriteByte('"')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
