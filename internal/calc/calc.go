package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrSyntax         = errors.New("calc: syntax error")
	ErrUnknownName    = errors.New("calc: unknown name")
	ErrUnknownFunc    = errors.New("calc: unknown function")
	ErrDivisionZero   = errors.New("calc: division by zero")
	ErrNonFinite      = errors.New("calc: non-finite value")
	ErrBadCoefficient = errors.New("calc: coefficient is not a number")
)

// ParseExpr parses an algebraic expression in x and y.
//
// Supported: numbers (1, 2.5, .5, 1e-3), the variables x and y, the
// constants pi and E, + - * /, ** or ^ for powers (right associative and
// binding tighter than unary minus, so -y**2 is -(y**2)), parentheses and
// the functions sin cos tan exp log ln sqrt abs.
func ParseExpr(expr string) (Node, error) {
	p := parser{input: expr}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.input[p.pos:], p.pos)
	}
	return n, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSyntax}, args...)...)
}

func (p *parser) parseExpr() (Node, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (Node, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseMulDiv() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		// ** belongs to parsePower
		if op == '*' && p.pos+1 < len(p.input) && p.input[p.pos+1] == '*' {
			break
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Node, error) {
	p.skipSpaces()
	if p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '+' {
			p.pos++
			return p.parseFactor()
		}
		if ch == '-' {
			p.pos++
			v, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return neg{arg: v}, nil
		}
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	switch {
	case p.pos+1 < len(p.input) && p.input[p.pos] == '*' && p.input[p.pos+1] == '*':
		p.pos += 2
	case p.pos < len(p.input) && p.input[p.pos] == '^':
		p.pos++
	default:
		return base, nil
	}
	exp, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return binary{op: '^', left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, p.errorf("unexpected end of input")
	}
	ch := p.input[p.pos]
	if ch == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return v, nil
	}
	if isDigit(ch) || ch == '.' {
		return p.parseNumber()
	}
	if isLetter(ch) {
		return p.parseName()
	}
	return nil, p.errorf("unexpected %q at %d", ch, p.pos)
}

func (p *parser) parseNumber() (Node, error) {
	start := p.pos
	j := p.pos
	seenDot := false
	seenE := false
	for j < len(p.input) {
		c := p.input[j]
		if isDigit(c) {
			j++
			continue
		}
		if c == '.' {
			if seenDot || seenE {
				break
			}
			seenDot = true
			j++
			continue
		}
		if c == 'e' || c == 'E' {
			if seenE {
				break
			}
			seenE = true
			j++
			if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
				j++
			}
			continue
		}
		break
	}
	numStr := p.input[start:j]
	p.pos = j
	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", numStr)
	}
	return num(v), nil
}

// parseName reads a variable, a constant or a function call.
func (p *parser) parseName() (Node, error) {
	start := p.pos
	j := p.pos
	for j < len(p.input) && (isLetter(p.input[j]) || isDigit(p.input[j]) || p.input[j] == '_') {
		j++
	}
	name := p.input[start:j]
	p.pos = j
	p.skipSpaces()

	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		fn, ok := funcs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunc, name)
		}
		p.pos++
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("missing ')' after %s argument", name)
		}
		p.pos++
		return call{name: name, fn: fn, arg: arg}, nil
	}

	switch name {
	case "x":
		return varX{}, nil
	case "y":
		return varY{}, nil
	case "pi":
		return num(math.Pi), nil
	case "E":
		return num(math.E), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
}

var funcs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"log":  math.Log,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
