// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements a lexer and parser for pin specifications and
// connection strings.
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
	Equal:        "'='",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "token " + strconv.Itoa(int(t))
	}
	return typeNames[t]
}

// Pos is a byte offset in the input.
//
type Pos int

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case EOF:
		return i.Type.String()
	case Raw:
		return strconv.QuoteRune(i.Value.(rune))
	case Ident, Int:
		return i.Type.String() + " " + strconv.Quote(toString(i.Value))
	}
	return i.Type.String()
}

func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Lexer splits an input string into Items.
//
type Lexer struct {
	in  string
	pos int
}

// NewLexer returns a new lexer for i/o specs and connection descriptions.
//
func NewLexer(input string) *Lexer {
	return &Lexer{in: input}
}

func (l *Lexer) peek() (rune, int) {
	if l.pos >= len(l.in) {
		return -1, 0
	}
	return utf8.DecodeRuneInString(l.in[l.pos:])
}

// Lex returns the next item in the input. Once the end of input is reached,
// Lex only returns EOF items.
//
func (l *Lexer) Lex() Item {
	r, w := l.peek()
	for w > 0 && unicode.IsSpace(r) {
		l.pos += w
		r, w = l.peek()
	}
	start := l.pos
	switch {
	case w == 0:
		return Item{EOF, Pos(start), nil}
	case unicode.IsLetter(r) || r == '_':
		for w > 0 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			l.pos += w
			r, w = l.peek()
		}
		return Item{Ident, Pos(start), l.in[start:l.pos]}
	case '0' <= r && r <= '9':
		n := 0
		for w > 0 && '0' <= r && r <= '9' {
			n = n*10 + int(r-'0')
			l.pos += w
			r, w = l.peek()
		}
		return Item{Int, Pos(start), n}
	}
	l.pos += w
	switch r {
	case '[':
		return Item{BracketOpen, Pos(start), "["}
	case ']':
		return Item{BracketClose, Pos(start), "]"}
	case ',':
		return Item{Comma, Pos(start), ","}
	case '=':
		return Item{Equal, Pos(start), "="}
	case '.':
		if n, w := l.peek(); w > 0 && n == '.' {
			l.pos += w
			return Item{Range, Pos(start), ".."}
		}
	}
	// stop on garbage
	l.pos = len(l.in)
	return Item{Raw, Pos(start), r}
}

// Pin is a simple pin name
//
type Pin struct {
	Name string
	Pos  Pos
}

// PinIndex is an indexed pin p[index]
//
type PinIndex struct {
	Pin
	Index int
}

// PinRange is a pin range p[start..end]
//
type PinRange struct {
	Pin
	Start int
	End   int
}

// PinAssignment is a part pin to chip pin assignment. pp=pc
//
type PinAssignment struct {
	LHS interface{}
	RHS interface{}
}

// Parser is a simplistic parser
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

const (
	stateInit = iota
	stateStarted
	stateDone
)

// Next returns the next item in the input stream: a Pin, PinIndex, PinRange or,
// if allowConns is true, a PinAssignment. It returns nil, nil at the end of
// input.
//
func (p *Parser) Next(allowConns bool) (interface{}, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	pin, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		if allowConns {
			p.state = stateDone
			return nil, parseError(p.Input, p.i.Pos, "expected '=' after pin name")
		}
		return pin, nil
	case Equal:
		if allowConns {
			break
		}
		fallthrough
	default:
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}

	p.i = p.l.Lex()
	pin2, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return PinAssignment{pin, pin2}, nil
	}

	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getPin() (interface{}, error) {
	if p.i.Type != Ident {
		return nil, parseError(p.Input, p.i.Pos, "expected pin name")
	}
	pin := Pin{p.i.Value.(string), p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return pin, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return nil, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	start := p.i.Value.(int)
	end := -1
	p.i = p.l.Lex()
	if p.i.Type == Range {
		p.i = p.l.Lex()
		if p.i.Type != Int {
			return nil, parseError(p.Input, p.i.Pos, "integer value expected after '..'")
		}
		end = p.i.Value.(int)
		p.i = p.l.Lex()
	}
	if p.i.Type != BracketClose {
		return nil, parseError(p.Input, p.i.Pos, "closing ']' expected after index or range")
	}
	p.i = p.l.Lex()
	if end >= 0 {
		return PinRange{pin, start, end}, nil
	}
	return PinIndex{pin, start}, nil
}

func parseError(in string, pos Pos, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
