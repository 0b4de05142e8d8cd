package fakepb

import (
	"errors"
	"fmt"
	"strings"
)

var errBadFilter = errors.New("invalid filter")

// condition is one field='value' comparison.
type condition struct {
	field string
	value string
}

// parseFilter understands the subset of the record filter language the bot
// emits: equality comparisons on quoted literals joined with &&, optionally
// parenthesised. Anything else (||, unbalanced quotes, bare words) is
// rejected the way the real backend rejects malformed filters.
func parseFilter(src string) ([]condition, error) {
	p := &filterParser{src: src}
	conds, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing input at %d", errBadFilter, p.pos)
	}
	return conds, nil
}

type filterParser struct {
	src string
	pos int
}

func (p *filterParser) expr() ([]condition, error) {
	out, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "&&") {
			return out, nil
		}
		p.pos += 2
		more, err := p.term()
		if err != nil {
			return nil, err
		}
		out = append(out, more...)
	}
}

func (p *filterParser) term() ([]condition, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("%w: unexpected end", errBadFilter)
	}

	if p.src[p.pos] == '(' {
		p.pos++
		out, err := p.expr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("%w: missing )", errBadFilter)
		}
		p.pos++
		return out, nil
	}

	field := p.ident()
	if field == "" {
		return nil, fmt.Errorf("%w: expected field at %d", errBadFilter, p.pos)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return nil, fmt.Errorf("%w: expected = at %d", errBadFilter, p.pos)
	}
	p.pos++
	p.skipSpace()

	value, err := p.literal()
	if err != nil {
		return nil, err
	}
	return []condition{{field: field, value: value}}, nil
}

func (p *filterParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *filterParser) literal() (string, error) {
	if p.pos >= len(p.src) || p.src[p.pos] != '\'' {
		return "", fmt.Errorf("%w: expected quoted value at %d", errBadFilter, p.pos)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", fmt.Errorf("%w: dangling escape", errBadFilter)
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case '\'':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated string", errBadFilter)
}

func (p *filterParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}
