package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/cardiograph/core"
)

// Operation represents a single content stream operation consisting of an
// operator and the operands that preceded it.
type Operation struct {
	Operator string        // The operator (e.g., "cm", "l", "S")
	Operands []core.Object // The operands, in stream order
}

// Parser parses PDF content streams into a sequence of operations.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []core.Object // pending operands for the next operator
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse parses the content stream and returns all operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return p.ops, nil
		}
		if err := p.parseNext(); err != nil {
			return nil, err
		}
	}
}

// parseNext parses one token: an operand is pushed onto the pending stack,
// an operator consumes the stack and emits an Operation.
func (p *Parser) parseNext() error {
	c := p.data[p.pos]

	if c == '%' {
		p.skipComment()
		return nil
	}

	// Tokens starting with a letter or quote are operators, except the
	// keyword operands true, false, and null.
	if isLetter(c) || c == '\'' || c == '"' {
		return p.parseOperatorOrKeyword()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", p.pos, err)
	}
	p.operands = append(p.operands, operand)
	return nil
}

// parseOperatorOrKeyword reads a bare token and classifies it.
func (p *Parser) parseOperatorOrKeyword() error {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' {
			p.pos++
		} else {
			break
		}
	}
	token := string(p.data[start:p.pos])
	if token == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	switch token {
	case "true":
		p.operands = append(p.operands, core.Bool(true))
		return nil
	case "false":
		p.operands = append(p.operands, core.Bool(false))
		return nil
	case "null":
		p.operands = append(p.operands, core.Null{})
		return nil
	case "BI":
		// Inline image: the binary payload between ID and EI is not
		// object syntax, so skip the whole construct.
		return p.skipInlineImage()
	}

	op := Operation{Operator: token}
	if len(p.operands) > 0 {
		op.Operands = make([]core.Object, len(p.operands))
		copy(op.Operands, p.operands)
	}
	p.ops = append(p.ops, op)
	p.operands = p.operands[:0]
	return nil
}

// skipInlineImage advances past an inline image that began with BI. The
// image dictionary runs to ID, then raw sample data runs to EI.
func (p *Parser) skipInlineImage() error {
	idx := bytes.Index(p.data[p.pos:], []byte("ID"))
	if idx < 0 {
		return fmt.Errorf("inline image missing ID at position %d", p.pos)
	}
	p.pos += idx + 2

	for {
		idx = bytes.Index(p.data[p.pos:], []byte("EI"))
		if idx < 0 {
			return fmt.Errorf("inline image missing EI at position %d", p.pos)
		}
		end := p.pos + idx
		// EI must sit on a token boundary, not inside sample data.
		boundary := end+2 >= len(p.data) || isWhitespace(p.data[end+2]) || isDelimiter(p.data[end+2])
		if boundary && end > 0 && isWhitespace(p.data[end-1]) {
			p.pos = end + 2
			p.operands = p.operands[:0]
			return nil
		}
		p.pos = end + 2
	}
}

// parseOperand parses a single operand: number, string, name, array, or
// dictionary.
func (p *Parser) parseOperand() (core.Object, error) {
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	case c == '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDict()
		}
		return p.parseHexString()
	}
	return nil, fmt.Errorf("unexpected character %q", c)
}

func (p *Parser) parseNumber() (core.Object, error) {
	start := p.pos
	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	hasDot := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDot {
			hasDot = true
			p.pos++
		} else {
			break
		}
	}

	tok := string(p.data[start:p.pos])
	if hasDot {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", tok, err)
		}
		return core.Real(v), nil
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", tok, err)
	}
	return core.Int(v), nil
}

func (p *Parser) parseString() (core.Object, error) {
	p.pos++ // '('
	var buf bytes.Buffer
	depth := 1

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			e := p.data[p.pos]
			switch e {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(e)
			case '\r':
				if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
					p.pos++
				}
			case '\n':
				// Line continuation.
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && p.pos+1 < len(p.data); i++ {
					d := p.data[p.pos+1]
					if d < '0' || d > '7' {
						break
					}
					v = v*8 + int(d-'0')
					p.pos++
				}
				buf.WriteByte(byte(v & 0xFF))
			default:
				buf.WriteByte(e)
			}
			p.pos++
		case c == '(':
			depth++
			buf.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			p.pos++
			if depth == 0 {
				return core.String(buf.String()), nil
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
			p.pos++
		}
	}
	return nil, fmt.Errorf("unclosed string")
}

func (p *Parser) parseHexString() (core.Object, error) {
	p.pos++ // '<'
	var buf bytes.Buffer
	var hi byte
	havePending := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			if havePending {
				buf.WriteByte(hi << 4)
			}
			return core.String(buf.String()), nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if havePending {
			buf.WriteByte(hi<<4 | hexValue(c))
			havePending = false
		} else {
			hi = hexValue(c)
			havePending = true
		}
	}
	return nil, fmt.Errorf("unclosed hex string")
}

func (p *Parser) parseName() (core.Object, error) {
	p.pos++ // '/'
	var buf bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			buf.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		buf.WriteByte(c)
		p.pos++
	}
	return core.Name(buf.String()), nil
}

func (p *Parser) parseArray() (core.Object, error) {
	p.pos++ // '['
	var arr core.Array
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (core.Object, error) {
	p.pos += 2 // '<<'
	dict := make(core.Dict)
	for {
		p.skipWhitespace()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key.(core.Name))] = val
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
}

func (p *Parser) skipComment() {
	for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
		p.pos++
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
