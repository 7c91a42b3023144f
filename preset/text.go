package preset

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tonefx/tonefx"
)

// ErrParse is returned (wrapped with positional detail) for any malformed
// preset text, per spec §7's preset/parser failure error kind: the target
// collection is left unmodified.
var ErrParse = errors.New("preset: parse error")

// Parse decodes data (the grammar from spec §4.9/§6, a ".bs"-convention
// text file) into a Collection. A leading byte-order mark, if present, is
// tolerated and stripped via golang.org/x/text/encoding/unicode — the same
// defensive BOM handling other text-heavy code in this corpus's retrieval
// pack applies before tokenizing configuration text.
func Parse(data []byte) (*Collection, error) {
	stripped, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	p := &textParser{toks: tokenize(string(stripped))}
	return p.parseRoot()
}

// Serialize renders c into the textual grammar Parse reads back, presets
// in collection order. parse(serialize(c)) == c for any well-formed c, per
// spec §6's round-trip requirement.
func Serialize(c *Collection) []byte {
	var buf bytes.Buffer
	buf.WriteString("presets {\n")
	for _, p := range c.Presets() {
		writePreset(&buf, p)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func writePreset(buf *bytes.Buffer, p FilterPreset) {
	fmt.Fprintf(buf, "  preset %s %s {\n", quote(p.FilterName), quote(p.Name))
	writeScalarSection(buf, "floats", sortedKeys(p.Floats), func(k string) string {
		return strconv.FormatFloat(p.Floats[k], 'g', -1, 64)
	})
	writeScalarSection(buf, "ints", sortedKeys(p.Ints), func(k string) string {
		return strconv.FormatInt(p.Ints[k], 10)
	})
	writeScalarSection(buf, "strings", sortedKeys(p.Strings), func(k string) string {
		return quote(p.Strings[k])
	})
	writeScalarSection(buf, "points", sortedKeys(p.Points), func(k string) string {
		pt := p.Points[k]
		return fmt.Sprintf("(%s, %s)", strconv.FormatFloat(pt.X, 'g', -1, 64), strconv.FormatFloat(pt.Y, 'g', -1, 64))
	})
	writeScalarSection(buf, "curves", sortedKeys(p.CurveTables), func(k string) string {
		var parts []string
		for _, pt := range p.CurveTables[k] {
			parts = append(parts, fmt.Sprintf("(%s, %s)", strconv.FormatFloat(pt.X, 'g', -1, 64), strconv.FormatFloat(pt.Y, 'g', -1, 64)))
		}
		return "[" + strings.Join(parts, " ") + "]"
	})
	buf.WriteString("  }\n")
}

func writeScalarSection(buf *bytes.Buffer, section string, keys []string, render func(string) string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(buf, "    %s {\n", section)
	for _, k := range keys {
		fmt.Fprintf(buf, "      %s = %s\n", k, render(k))
	}
	buf.WriteString("    }\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quote(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteRune(r)
	}
	buf.WriteByte('"')
	return buf.String()
}

// --- tokenizer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokEquals
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) []token {
	var toks []token
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '{':
			toks = append(toks, token{tokLBrace, "{"})
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}"})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "["})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]"})
			i++
		case c == '=':
			toks = append(toks, token{tokEquals, "="})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '"':
			j := i + 1
			var sb strings.Builder
			for j < n && s[j] != '"' {
				if s[j] == '\\' && j+1 < n {
					j++
				}
				sb.WriteByte(s[j])
				j++
			}
			toks = append(toks, token{tokString, sb.String()})
			i = j + 1
		case c == '#':
			for i < n && s[i] != '\n' {
				i++
			}
		default:
			j := i
			for j < n && isIdentOrNumberByte(s[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			word := s[i:j]
			if looksNumeric(word) {
				toks = append(toks, token{tokNumber, word})
			} else {
				toks = append(toks, token{tokIdent, word})
			}
			i = j
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks
}

func isIdentOrNumberByte(c byte) bool {
	return c == '.' || c == '-' || c == '+' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') || c == '_'
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// --- parser ---

type textParser struct {
	toks []token
	pos  int
}

func (p *textParser) peek() token  { return p.toks[p.pos] }
func (p *textParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *textParser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return token{}, fmt.Errorf("%w: unexpected token %q at position %d", ErrParse, t.text, p.pos)
	}
	return p.advance(), nil
}

func (p *textParser) parseRoot() (*Collection, error) {
	if _, err := p.expectIdent("presets"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	c := NewCollection()
	for p.peek().kind != tokRBrace {
		preset, err := p.parsePreset()
		if err != nil {
			return nil, err
		}
		c.Append(preset)
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *textParser) expectIdent(word string) (token, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return token{}, err
	}
	if t.text != word {
		return token{}, fmt.Errorf("%w: expected %q, got %q", ErrParse, word, t.text)
	}
	return t, nil
}

func (p *textParser) parsePreset() (FilterPreset, error) {
	if _, err := p.expectIdent("preset"); err != nil {
		return FilterPreset{}, err
	}
	filterName, err := p.expect(tokString)
	if err != nil {
		return FilterPreset{}, err
	}
	name, err := p.expect(tokString)
	if err != nil {
		return FilterPreset{}, err
	}
	preset := New(filterName.text, name.text)

	if _, err := p.expect(tokLBrace); err != nil {
		return FilterPreset{}, err
	}
	for p.peek().kind != tokRBrace {
		section, err := p.expect(tokIdent)
		if err != nil {
			return FilterPreset{}, err
		}
		if _, err := p.expect(tokLBrace); err != nil {
			return FilterPreset{}, err
		}
		if err := p.parseSection(section.text, &preset); err != nil {
			return FilterPreset{}, err
		}
		if _, err := p.expect(tokRBrace); err != nil {
			return FilterPreset{}, err
		}
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return FilterPreset{}, err
	}
	return preset, nil
}

func (p *textParser) parseSection(section string, preset *FilterPreset) error {
	for p.peek().kind == tokIdent {
		key, err := p.expect(tokIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokEquals); err != nil {
			return err
		}
		switch section {
		case "floats":
			v, err := p.parseFloat()
			if err != nil {
				return err
			}
			preset.Floats[key.text] = v
		case "ints":
			tok, err := p.expect(tokNumber)
			if err != nil {
				return err
			}
			iv, err := strconv.ParseInt(tok.text, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid int %q", ErrParse, tok.text)
			}
			preset.Ints[key.text] = iv
		case "strings":
			tok, err := p.expect(tokString)
			if err != nil {
				return err
			}
			preset.Strings[key.text] = tok.text
		case "points":
			pt, err := p.parsePoint()
			if err != nil {
				return err
			}
			preset.Points[key.text] = pt
		case "curves":
			curve, err := p.parseCurve()
			if err != nil {
				return err
			}
			preset.CurveTables[key.text] = curve
		default:
			return fmt.Errorf("%w: unknown section %q", ErrParse, section)
		}
	}
	return nil
}

func (p *textParser) parseFloat() (float64, error) {
	tok, err := p.expect(tokNumber)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid float %q", ErrParse, tok.text)
	}
	return v, nil
}

func (p *textParser) parsePoint() (tonefx.Point, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return tonefx.Point{}, err
	}
	x, err := p.parseFloat()
	if err != nil {
		return tonefx.Point{}, err
	}
	if _, err := p.expect(tokComma); err != nil {
		return tonefx.Point{}, err
	}
	y, err := p.parseFloat()
	if err != nil {
		return tonefx.Point{}, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return tonefx.Point{}, err
	}
	return tonefx.Pt(x, y), nil
}

func (p *textParser) parseCurve() ([]tonefx.Point, error) {
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	var pts []tonefx.Point
	for p.peek().kind == tokLParen {
		pt, err := p.parsePoint()
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return pts, nil
}
