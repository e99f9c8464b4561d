package flowbridge

import (
	"strconv"
	"strings"

	"github.com/flowbridge/compiler/internal/loc"
	"golang.org/x/net/html/atom"
)

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// ErrorToken means the end of input.
	ErrorToken TokenType = iota
	// TextToken means a text node.
	TextToken
	// A StartTagToken looks like <a>.
	StartTagToken
	// An EndTagToken looks like </a>.
	EndTagToken
	// A SelfClosingTagToken tag looks like <br/>.
	SelfClosingTagToken
	// A CommentToken looks like <!--x-->.
	CommentToken
	// A DoctypeToken looks like <!DOCTYPE x> and is skipped by the parser.
	DoctypeToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case TextToken:
		return "Text"
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case SelfClosingTagToken:
		return "SelfClosingTag"
	case CommentToken:
		return "Comment"
	case DoctypeToken:
		return "Doctype"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// A Token consists of a TokenType and some Data (tag name for start and end
// tags, content for text and comments). A tag Token may also contain a slice
// of Attributes.
type Token struct {
	Type     TokenType
	DataAtom atom.Atom
	Data     string
	Attr     []Attribute
	Loc      loc.Loc
}

// A Tokenizer produces a sequence of Tokens from arbitrary byte input. It has
// no error state: any input yields a finite token stream ending in ErrorToken.
type Tokenizer struct {
	src string
	pos int

	// rawTag, when set, makes the next text scan run until the matching
	// close tag. Set after emitting a start tag for script/style/etc.
	rawTag string
}

// NewTokenizer returns a Tokenizer over the given source.
func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Next scans and returns the next token.
func (z *Tokenizer) Next() Token {
	if z.pos >= len(z.src) {
		return Token{Type: ErrorToken, Loc: loc.Loc{Start: z.pos}}
	}
	if z.rawTag != "" {
		return z.scanRawText()
	}
	if z.src[z.pos] == '<' {
		return z.scanMarkup()
	}
	return z.scanText()
}

func (z *Tokenizer) scanText() Token {
	start := z.pos
	for z.pos < len(z.src) && z.src[z.pos] != '<' {
		z.pos++
	}
	return Token{Type: TextToken, Data: z.src[start:z.pos], Loc: loc.Loc{Start: start}}
}

// scanRawText consumes character data up to the close tag of the pending raw
// text element (</script>, </style>, ...). The close tag itself is left for
// the next scan.
func (z *Tokenizer) scanRawText() Token {
	start := z.pos
	closer := "</" + z.rawTag
	for z.pos < len(z.src) {
		if z.src[z.pos] == '<' && hasCaseInsensitivePrefix(z.src[z.pos:], closer) {
			break
		}
		z.pos++
	}
	z.rawTag = ""
	return Token{Type: TextToken, Data: z.src[start:z.pos], Loc: loc.Loc{Start: start}}
}

func (z *Tokenizer) scanMarkup() Token {
	start := z.pos
	if z.pos+1 >= len(z.src) {
		z.pos = len(z.src)
		return Token{Type: TextToken, Data: "<", Loc: loc.Loc{Start: start}}
	}
	switch c := z.src[z.pos+1]; {
	case strings.HasPrefix(z.src[z.pos:], "<!--"):
		return z.scanComment()
	case c == '!':
		return z.scanDoctype()
	case c == '/':
		return z.scanCloseTag()
	case isTagNameStart(c):
		return z.scanOpenTag()
	default:
		// A bare '<' that opens nothing is kept as text.
		z.pos++
		return Token{Type: TextToken, Data: "<", Loc: loc.Loc{Start: start}}
	}
}

func (z *Tokenizer) scanComment() Token {
	start := z.pos
	z.pos += len("<!--")
	end := strings.Index(z.src[z.pos:], "-->")
	if end < 0 {
		// Unterminated comment swallows the rest of the input.
		data := z.src[z.pos:]
		z.pos = len(z.src)
		return Token{Type: CommentToken, Data: data, Loc: loc.Loc{Start: start}}
	}
	data := z.src[z.pos : z.pos+end]
	z.pos += end + len("-->")
	return Token{Type: CommentToken, Data: data, Loc: loc.Loc{Start: start}}
}

func (z *Tokenizer) scanDoctype() Token {
	start := z.pos
	end := strings.IndexByte(z.src[z.pos:], '>')
	if end < 0 {
		z.pos = len(z.src)
		return Token{Type: DoctypeToken, Loc: loc.Loc{Start: start}}
	}
	data := z.src[z.pos+2 : z.pos+end]
	z.pos += end + 1
	return Token{Type: DoctypeToken, Data: data, Loc: loc.Loc{Start: start}}
}

func (z *Tokenizer) scanCloseTag() Token {
	start := z.pos
	z.pos += len("</")
	nameStart := z.pos
	for z.pos < len(z.src) && isTagNameChar(z.src[z.pos]) {
		z.pos++
	}
	name := strings.ToLower(z.src[nameStart:z.pos])
	// Tolerate junk between the name and '>'.
	if end := strings.IndexByte(z.src[z.pos:], '>'); end >= 0 {
		z.pos += end + 1
	} else {
		z.pos = len(z.src)
	}
	return Token{
		Type:     EndTagToken,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
		Loc:      loc.Loc{Start: start},
	}
}

func (z *Tokenizer) scanOpenTag() Token {
	start := z.pos
	z.pos++ // consume '<'
	nameStart := z.pos
	for z.pos < len(z.src) && isTagNameChar(z.src[z.pos]) {
		z.pos++
	}
	name := strings.ToLower(z.src[nameStart:z.pos])

	t := Token{
		Type:     StartTagToken,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
		Loc:      loc.Loc{Start: start},
	}

	selfClosing := false
	for z.pos < len(z.src) {
		z.skipWhitespace()
		if z.pos >= len(z.src) {
			break
		}
		if z.src[z.pos] == '>' {
			z.pos++
			break
		}
		if z.src[z.pos] == '/' {
			z.pos++
			if z.pos < len(z.src) && z.src[z.pos] == '>' {
				z.pos++
				selfClosing = true
				break
			}
			// Stray '/' inside a tag; ignore.
			continue
		}
		attr, ok := z.scanAttribute()
		if !ok {
			// Unparseable byte inside the tag; skip it rather than fail.
			z.pos++
			continue
		}
		t.Attr = append(t.Attr, attr)
	}
	if selfClosing {
		t.Type = SelfClosingTagToken
	}
	if t.Type == StartTagToken && rawTextTags[name] {
		z.rawTag = name
	}
	return t
}

func (z *Tokenizer) scanAttribute() (Attribute, bool) {
	nameStart := z.pos
	for z.pos < len(z.src) && !isAttrNameEnd(z.src[z.pos]) {
		z.pos++
	}
	name := z.src[nameStart:z.pos]
	if name == "" {
		return Attribute{}, false
	}
	z.skipWhitespace()
	if z.pos >= len(z.src) || z.src[z.pos] != '=' {
		return Attribute{Key: name}, true
	}
	z.pos++ // consume '='
	z.skipWhitespace()
	if z.pos >= len(z.src) {
		return Attribute{Key: name}, true
	}
	switch q := z.src[z.pos]; q {
	case '"', '\'':
		z.pos++
		valStart := z.pos
		for z.pos < len(z.src) && z.src[z.pos] != q {
			z.pos++
		}
		val := z.src[valStart:z.pos]
		if z.pos < len(z.src) {
			z.pos++ // consume closing quote
		}
		return Attribute{Key: name, Val: val}, true
	default:
		valStart := z.pos
		for z.pos < len(z.src) && !isUnquotedValEnd(z.src[z.pos]) {
			z.pos++
		}
		return Attribute{Key: name, Val: z.src[valStart:z.pos]}, true
	}
}

func (z *Tokenizer) skipWhitespace() {
	for z.pos < len(z.src) && isSpace(z.src[z.pos]) {
		z.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isTagNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagNameChar(c byte) bool {
	return isTagNameStart(c) || c >= '0' && c <= '9' || c == '-' || c == ':'
}

func isAttrNameEnd(c byte) bool {
	return isSpace(c) || c == '=' || c == '>' || c == '/'
}

func isUnquotedValEnd(c byte) bool {
	return isSpace(c) || c == '>'
}

func hasCaseInsensitivePrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
