package maskexpr

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ParseError reports a malformed mask expression. Offset is the byte
// position of the offending input, so the editor can point at it.
type ParseError struct {
	Offset int
	Msg    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("maskexpr: %s at offset %d", e.Msg, e.Offset)
}

// Parse parses a mask expression. An empty or whitespace-only input
// returns (nil, nil), meaning no restriction. Any other failure — a
// malformed integer, an unmatched parenthesis, an unknown operator, or
// leftover input after a complete expression — returns a *ParseError.
//
// Parse never mutates previous trees; the caller replaces its tree
// wholesale on success.
func Parse(input string) (*Op, error) {
	p := &parser{input: input}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}

	op, err := p.union()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		r, _ := p.peek()
		return nil, &ParseError{Offset: p.pos, Msg: fmt.Sprintf("unexpected %q after expression", r)}
	}
	return op, nil
}

// parser scans the input left to right, tracking a byte offset for error
// reporting. Whitespace between tokens is skipped before every token.
type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() (rune, int) {
	return utf8.DecodeRuneInString(p.input[p.pos:])
}

func (p *parser) skipSpace() {
	for !p.eof() {
		r, size := p.peek()
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

// accept consumes the given operator rune if it is next, after skipping
// whitespace.
func (p *parser) accept(want rune) bool {
	p.skipSpace()
	if p.eof() {
		return false
	}
	r, size := p.peek()
	if r != want {
		return false
	}
	p.pos += size
	return true
}

// binary left-folds a separated list of the next-higher-precedence term,
// which makes every binary operator left-associative.
func (p *parser) binary(sep rune, next func() (*Op, error), build func(left, right *Op) *Op) (*Op, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.accept(sep) {
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = build(left, right)
	}
	return left, nil
}

func (p *parser) union() (*Op, error) {
	return p.binary('|', p.intersection, Union)
}

func (p *parser) intersection() (*Op, error) {
	return p.binary('&', p.difference, Intersection)
}

func (p *parser) difference() (*Op, error) {
	return p.binary('-', p.symmetricDifference, Difference)
}

func (p *parser) symmetricDifference() (*Op, error) {
	return p.binary('^', p.factor, SymmetricDifference)
}

// factor parses a complement, a parenthesized expression, or a shape
// reference.
func (p *parser) factor() (*Op, error) {
	p.skipSpace()
	if p.eof() {
		return nil, &ParseError{Offset: p.pos, Msg: "unexpected end of expression"}
	}

	r, _ := p.peek()
	switch {
	case r == '!':
		p.accept('!')
		op, err := p.factor()
		if err != nil {
			return nil, err
		}
		return Complement(op), nil

	case r == '(':
		open := p.pos
		p.accept('(')
		op, err := p.union()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, &ParseError{Offset: open, Msg: "unmatched '('"}
		}
		return op, nil

	case r >= '0' && r <= '9':
		return p.shapeRef()

	default:
		return nil, &ParseError{Offset: p.pos, Msg: fmt.Sprintf("unexpected %q", r)}
	}
}

// shapeRef parses a non-negative integer shape reference.
func (p *parser) shapeRef() (*Op, error) {
	start := p.pos
	for !p.eof() {
		r, size := p.peek()
		if r < '0' || r > '9' {
			break
		}
		p.pos += size
	}

	index, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return nil, &ParseError{Offset: start, Msg: fmt.Sprintf("malformed shape index %q", p.input[start:p.pos])}
	}
	return ShapeRef(index), nil
}
