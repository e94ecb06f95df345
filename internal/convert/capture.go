package convert

import (
	"strings"

	"codeshift/internal/lang"
)

// translator rewrites captured source fragments into target text.
type translator struct {
	src, dst *lang.Spec
}

type tokKind uint8

const (
	tokWord tokKind = iota
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind  tokKind
	text  string
	space bool // whitespace before the token
}

var multiOps = []string{
	"===", "!==", "**=", "...",
	"==", "!=", "<=", ">=", "&&", "||", "??", "->", "=>", ":=", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "<<", ">>", "**",
}

// captures translates every named group of a construct match.
func (tr translator) captures(c *lang.Construct, match []string) (caps map[string]string, lists map[string][]string) {
	caps = map[string]string{}
	for i, name := range c.Pattern.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		raw := strings.TrimSpace(match[i])
		if raw == "" {
			continue
		}
		switch c.CaptureKind(name) {
		case lang.CaptureName:
			caps[name] = tr.name(raw)
		case lang.CaptureTypeName:
			caps[name] = tr.typeName(raw)
		case lang.CaptureOperands:
			caps[name] = tr.operands(raw)
		case lang.CaptureType:
			target, canon := tr.typ(raw)
			if target != "" {
				caps[name] = target
			}
			if z := tr.dst.Target.Zero[canon]; z != "" {
				caps["zero"] = z
			}
		case lang.CaptureParams:
			caps[name] = tr.params(raw)
		case lang.CaptureList:
			items := tr.list(raw)
			if len(items) == 0 {
				continue
			}
			if lists == nil {
				lists = map[string][]string{}
			}
			lists[name] = items
			caps[name] = items[0]
		case lang.CaptureRaw:
			caps[name] = raw
		default:
			caps[name] = tr.expr(raw)
		}
	}
	for k, v := range c.Defaults {
		if caps[k] == "" {
			caps[k] = v
		}
	}
	return caps, lists
}

// rename applies the target naming convention to identifiers that are not
// valid in any target as written.
func (tr translator) rename(ident string) string {
	if !tr.src.Hyphenated {
		return ident
	}
	return lang.ApplyNaming(tr.dst.Target.Naming, ident)
}

func (tr translator) name(raw string) string {
	return tr.rename(strings.Trim(raw, `"'`))
}

func (tr translator) typeName(raw string) string {
	raw = strings.Trim(raw, `"'`)
	if !tr.src.Hyphenated {
		return raw
	}
	return lang.ApplyNaming(lang.NamingPascal, raw)
}

// typ maps a source type (or PIC string) to the target type and returns the
// canonical type in between. Unknown types map to "".
func (tr translator) typ(raw string) (target, canon string) {
	if tr.src.TypeNames == nil {
		canon = lang.PictureType(raw)
	} else {
		canon = tr.src.TypeNames[raw]
	}
	if canon == "" {
		return "", ""
	}
	return tr.dst.Target.Types[canon], canon
}

// operands joins a whitespace or comma separated operand list with the
// target concatenation.
func (tr translator) operands(raw string) string {
	toks := tr.tokenize(raw)
	var parts []string
	for _, t := range toks {
		if t.kind == tokOp && t.text == "," {
			continue
		}
		parts = append(parts, tr.expr(t.text))
	}
	return strings.Join(parts, tr.dst.Target.ConcatJoin)
}

// list splits import-like lists. Quoted items win over bare words.
func (tr translator) list(raw string) []string {
	var items []string
	if strings.ContainsAny(raw, `"'`) {
		for _, t := range tr.tokenize(raw) {
			if t.kind == tokString {
				items = append(items, t.text[1:len(t.text)-1])
			}
		}
		return items
	}
	for _, f := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		items = append(items, tr.rename(f))
	}
	return items
}

type param struct {
	name, typ string
}

// params rewrites a parameter list in the target parameter style.
func (tr translator) params(raw string) string {
	var ps []param
	for _, p := range splitTop(raw, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i := strings.IndexByte(p, '='); i >= 0 && !strings.Contains(p[:i], "(") {
			p = strings.TrimSpace(p[:i])
		}
		ps = append(ps, tr.parseParam(p))
	}
	// Go shares a trailing type across grouped names: (a, b int)
	for i := len(ps) - 2; i >= 0; i-- {
		if ps[i].typ == "" && ps[i+1].typ != "" && tr.src.Target != nil && tr.src.Target.Params == lang.ParamsNameFirst {
			ps[i].typ = ps[i+1].typ
		}
	}

	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if (p.name == "self" || p.name == "cls") && tr.src.Tag == lang.Python && tr.dst.Tag != lang.Python {
			continue
		}
		name := tr.rename(p.name)
		typ := ""
		if p.typ != "" {
			typ, _ = tr.typ(p.typ)
		}
		if typ == "" {
			typ = tr.dst.Target.DefaultType
		}
		switch {
		case tr.dst.Target.Params == lang.ParamsNameOnly || typ == "":
			out = append(out, name)
		case tr.dst.Target.Params == lang.ParamsNameFirst:
			out = append(out, name+" "+typ)
		default:
			out = append(out, typ+" "+name)
		}
	}
	return strings.Join(out, ", ")
}

func (tr translator) parseParam(p string) param {
	p = strings.TrimPrefix(p, "final ")
	for strings.HasPrefix(p, "@") {
		if i := strings.IndexByte(p, ' '); i > 0 {
			p = strings.TrimSpace(p[i+1:])
		} else {
			break
		}
	}
	if i := strings.IndexByte(p, ':'); i > 0 {
		return param{name: strings.TrimSpace(p[:i]), typ: strings.TrimSpace(p[i+1:])}
	}
	p = strings.TrimLeft(p, "*&")
	fields := strings.Fields(p)
	switch {
	case len(fields) == 1:
		return param{name: fields[0]}
	case tr.src.Target != nil && tr.src.Target.Params == lang.ParamsNameFirst:
		return param{name: fields[0], typ: strings.Join(fields[1:], " ")}
	default:
		return param{name: fields[len(fields)-1], typ: strings.Join(fields[:len(fields)-1], " ")}
	}
}

// expr translates an expression token by token: source operators go through
// the canonical table, hyphenated identifiers get the target naming and
// string literals are re-quoted.
func (tr translator) expr(raw string) string {
	for _, ph := range tr.src.Phrases {
		raw = ph.Pattern.ReplaceAllString(raw, " "+ph.Canon+" ")
	}
	var (
		b       strings.Builder
		glued   bool // previous piece was a prefix operator
		dropped bool
	)
	for _, t := range tr.tokenize(raw) {
		piece := tr.token(t)
		if piece == "" {
			dropped = dropped || t.space
			continue
		}
		if b.Len() > 0 && !glued {
			last := b.String()[b.Len()-1]
			if t.space || dropped || isWordByte(last) && isWordByte(piece[0]) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(piece)
		glued = piece == "!"
		dropped = false
	}
	return b.String()
}

func (tr translator) token(t token) string {
	switch t.kind {
	case tokString:
		return tr.quote(t.text)
	case tokNumber:
		return t.text
	}
	key := t.text
	if tr.src.CaseFold {
		key = strings.ToUpper(key)
	}
	if canon, ok := tr.src.Words[key]; ok {
		if r, ok := tr.dst.Target.Render[canon]; ok {
			return r
		}
		return canon
	}
	if t.kind == tokWord {
		return tr.rename(t.text)
	}
	return t.text
}

// quote rewrites a string literal as a double-quoted target literal.
func (tr translator) quote(lit string) string {
	if len(lit) < 2 || lit[0] == '`' || strings.HasPrefix(lit, `"""`) || strings.HasPrefix(lit, `'''`) {
		return lit
	}
	q := lit[0]
	body := lit[1 : len(lit)-1]
	if tr.src.CaseFold {
		// COBOL literals have no backslash escapes; a doubled quote is a quote
		body = strings.ReplaceAll(body, `\`, `\\`)
		body = strings.ReplaceAll(body, string([]byte{q, q}), `\`+string(q))
	}
	if q == '"' {
		return `"` + body + `"`
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(body[i])
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (tr translator) tokenize(raw string) []token {
	var toks []token
	space := false
	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			space = true
			i++
			continue
		case c == '"' || c == '\'' || c == '`':
			j := tr.skipLiteral(raw, i)
			toks = append(toks, token{kind: tokString, text: raw[i:j], space: space})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(raw) && (isWordByte(raw[j]) || raw[j] == '.' && j+1 < len(raw) && raw[j+1] >= '0' && raw[j+1] <= '9') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: raw[i:j], space: space})
			i = j
		case isWordByte(c):
			j := i + 1
			for j < len(raw) && (isWordByte(raw[j]) || tr.src.Hyphenated && raw[j] == '-' && j+1 < len(raw) && isWordByte(raw[j+1])) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: raw[i:j], space: space})
			i = j
		default:
			op := string(c)
			for _, m := range multiOps {
				if strings.HasPrefix(raw[i:], m) {
					op = m
					break
				}
			}
			toks = append(toks, token{kind: tokOp, text: op, space: space})
			i += len(op)
		}
		space = false
	}
	return toks
}

func (tr translator) skipLiteral(raw string, i int) int {
	q := raw[i]
	for j := i + 1; j < len(raw); j++ {
		switch {
		case raw[j] == '\\' && !tr.src.CaseFold:
			j++
		case raw[j] == q && tr.src.CaseFold && j+1 < len(raw) && raw[j+1] == q:
			j++
		case raw[j] == q:
			return j + 1
		}
	}
	return len(raw)
}

// splitTop splits s on sep outside brackets and string literals.
func splitTop(s string, sep byte) []string {
	var (
		out   []string
		depth int
		start int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			depth--
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}
