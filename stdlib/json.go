package stdlib

import (
	"strconv"
	"strings"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installJSON(ev *eval.Evaluator) {
	r := ev.Realm()
	j := r.NewObject()

	method(ev, j, "stringify", 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		indent := ""
		switch sp := arg(args, 2).(type) {
		case value.Number:
			n := int(sp)
			if n > 10 {
				n = 10
			}
			if n > 0 {
				indent = strings.Repeat(" ", n)
			}
		case value.String:
			indent = string(sp)
		}
		var b strings.Builder
		ok, err := jsonStringify(ev, &b, arg(args, 0), indent, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			return value.Undef, nil
		}
		return value.String(b.String()), nil
	})

	method(ev, j, "parse", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		p := &jsonParser{s: value.ToStringValue(arg(args, 0)), ev: ev}
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos != len(p.s) {
			return nil, ev.TypeError("Unexpected non-whitespace character after JSON")
		}
		return v, nil
	})

	global(ev, "JSON", j)
}

func jsonStringify(ev *eval.Evaluator, b *strings.Builder, v value.Value, indent, cur string) (bool, error) {
	if o, ok := v.(*value.Object); ok {
		if toJSON, _ := value.Get(o, "toJSON", o); toJSON != value.Undef {
			if fn, ok := toJSON.(*value.Object); ok && fn.Call != nil {
				rv, err := ev.Call(fn, o, nil)
				if err != nil {
					return false, err
				}
				v = rv
			}
		}
	}
	switch t := v.(type) {
	case value.Undefined:
		return false, nil
	case value.Null:
		b.WriteString("null")
		return true, nil
	case value.Bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return true, nil
	case value.Number:
		if t.IsNaN() || isInf(float64(t)) {
			b.WriteString("null")
		} else {
			b.WriteString(value.NumberToString(float64(t)))
		}
		return true, nil
	case value.String:
		writeJSONString(b, string(t))
		return true, nil
	case *value.Object:
		if t.Call != nil {
			return false, nil
		}
		next := cur + indent
		if t.Class == "Array" {
			elems := value.ArrayToSlice(t)
			if len(elems) == 0 {
				b.WriteString("[]")
				return true, nil
			}
			b.WriteByte('[')
			for i, e := range elems {
				if i > 0 {
					b.WriteByte(',')
				}
				writeNewlineIndent(b, indent, next)
				ok, err := jsonStringify(ev, b, e, indent, next)
				if err != nil {
					return false, err
				}
				if !ok {
					b.WriteString("null")
				}
			}
			writeNewlineIndent(b, indent, cur)
			b.WriteByte(']')
			return true, nil
		}
		keys := enumerableStringKeys(t)
		var entries []string
		for _, k := range keys {
			var eb strings.Builder
			pv, err := value.Get(t, k, t)
			if err != nil {
				return false, err
			}
			ok, err := jsonStringify(ev, &eb, pv, indent, next)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			var kb strings.Builder
			writeJSONString(&kb, k)
			sep := ":"
			if indent != "" {
				sep = ": "
			}
			entries = append(entries, kb.String()+sep+eb.String())
		}
		if len(entries) == 0 {
			b.WriteString("{}")
			return true, nil
		}
		b.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewlineIndent(b, indent, next)
			b.WriteString(e)
		}
		writeNewlineIndent(b, indent, cur)
		b.WriteByte('}')
		return true, nil
	default:
		return false, nil
	}
}

func writeNewlineIndent(b *strings.Builder, indent, cur string) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(cur)
}

func enumerableStringKeys(o *value.Object) []string {
	var keys []string
	for _, k := range o.OwnKeys() {
		if ks, ok := k.(string); ok {
			if d := o.GetOwn(k); d != nil && d.Enumerable {
				keys = append(keys, ks)
			}
		}
	}
	return keys
}

func isInf(f float64) bool {
	return f > 1e308*10 || f < -1e308*10
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// jsonParser is a small recursive-descent JSON parser, grounded on the same
// hand-rolled-scanner shape the lexer uses for the language's own tokens
// rather than pulling in a generic encoding/json round trip through Go
// values (property order and JS's sparser numeric rules don't map cleanly
// onto it).
type jsonParser struct {
	s   string
	pos int
	ev  *eval.Evaluator
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *jsonParser) parseValue() (value.Value, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, p.ev.TypeError("Unexpected end of JSON input")
	}
	switch c := p.peek(); {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	case c == 't':
		return p.parseLiteral("true", value.Bool(true))
	case c == 'f':
		return p.parseLiteral("false", value.Bool(false))
	case c == 'n':
		return p.parseLiteral("null", value.NullVal)
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) parseLiteral(lit string, v value.Value) (value.Value, error) {
	if p.pos+len(lit) > len(p.s) || p.s[p.pos:p.pos+len(lit)] != lit {
		return nil, p.ev.TypeError("Unexpected token in JSON")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.pos == start {
		return nil, p.ev.TypeError("Unexpected token in JSON")
	}
	f, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return nil, p.ev.TypeError("Invalid number in JSON")
	}
	return value.Number(f), nil
}

func (p *jsonParser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.s) {
				break
			}
			switch p.s[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if p.pos+4 < len(p.s) {
					n, err := strconv.ParseInt(p.s[p.pos+1:p.pos+5], 16, 32)
					if err == nil {
						b.WriteRune(rune(n))
						p.pos += 4
					}
				}
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.ev.TypeError("Unterminated string in JSON")
}

func (p *jsonParser) parseArray() (value.Value, error) {
	p.pos++ // '['
	var elems []value.Value
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return p.ev.Realm().NewArray(nil), nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == ']' {
			p.pos++
			return p.ev.Realm().NewArray(elems), nil
		}
		return nil, p.ev.TypeError("Unexpected token in JSON array")
	}
}

func (p *jsonParser) parseObject() (value.Value, error) {
	p.pos++ // '{'
	o := p.ev.Realm().NewObject()
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return o, nil
	}
	for {
		p.skipSpace()
		if p.peek() != '"' {
			return nil, p.ev.TypeError("Expected property name in JSON object")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.ev.TypeError("Expected ':' in JSON object")
		}
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		o.SetData(key, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == '}' {
			p.pos++
			return o, nil
		}
		return nil, p.ev.TypeError("Unexpected token in JSON object")
	}
}
