package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)(?:pt|mm|cm|in|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	// rule name per token type, reported as Lexeme.Type
	tokenKinds = func() map[lexer.TokenType]string {
		kinds := map[lexer.TokenType]string{}
		for name, tt := range sceneLexer.Symbols() {
			kinds[tt] = name
		}
		return kinds
	}()

	newlineTokenType = tokenType("Newline")
	lbraceTokenType  = tokenType("LBrace")
	rbraceTokenType  = tokenType("RBrace")
	symbolTokenType  = tokenType("Symbol")
	stringTokenType  = tokenType("String")
	numberTokenType  = tokenType("Number")

	documentParser = participle.MustBuild[Document](
		participle.Lexer(sceneLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a scene file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of meta, resources or page.
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// MetaSection holds document info (title, author, keywords ...) written to the output file.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// ResourcesSection groups font, color and style declarations.
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// PageSection is one drawing surface.
type PageSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Lexeme      `parser:"'page' @@*"`
	Block  *Block         `parser:"@@"`
}

// Block is the `{ ... }` body of a section or command.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is one line of a block, eg. `path: [...]`, `textpath ... { }` or `"label"`.
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment binds a property, eg. `path: data.route` or `size: 4mm`.
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Command is a keyword with loose arguments and an optional body,
// eg. `textpath Label align left { ... }`.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral is a bare string statement.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value is the right-hand side of an assignment; exactly one field is set.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Object *InlineObject  `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]`; arrays nest, so `[[0, 0], [10, 0]]` is a point list.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// InlineObject captures `{ key: value }` maps.
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ Newline* ( (',' | ';' | Newline+) Newline* @@ Newline* )* )? Newline* '}'"`
}

// Expression keeps raw tokens (eg. `data.route`) for the binding stage.
type Expression struct {
	Parts []*Lexeme
}

// String joins the expression tokens without separators.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	values := make([]string, 0, len(e.Parts))
	for _, p := range e.Parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, "")
}

// Parse implements participle.Parseable.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	var parts []*Lexeme
	depth := 0
	// two operands in a row end the expression: `font: Body size: 12pt`
	operand := false

	for {
		tok := lex.Peek()
		if stopExpression(tok, depth) {
			break
		}
		if operand && tok.Type == numberTokenType && strings.HasPrefix(tok.Value, "-") {
			// `a-1` lexes as `a` `-1`: after an operand the sign is a binary minus
			minus, number, err := splitSign(lex)
			if err != nil {
				return err
			}
			parts = append(parts, minus, number)
			continue
		}
		if operand && depth == 0 && tok.Type != symbolTokenType {
			break
		}
		lexeme, err := consumeLexeme(lex)
		if err != nil {
			return err
		}
		switch lexeme.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			if depth > 0 {
				depth--
			}
		}
		operand = lexeme.Type != "Symbol" || lexeme.Raw == ")" || lexeme.Raw == "]"
		parts = append(parts, lexeme)
	}

	if len(parts) == 0 {
		return participle.NextMatch
	}
	e.Parts = parts
	return nil
}

// Lexeme is a single token used as a command argument or expression part.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse reads one command argument; it stops at newlines, braces and `;`.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if shouldStopArg(lex.Peek()) {
		return participle.NextMatch
	}
	lexeme, err := consumeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// StringLiteral is a text literal with Go escape sequences already resolved.
type StringLiteral string

func (s *StringLiteral) Capture(values []string) error {
	if len(values) != 1 {
		return fmt.Errorf("字符串字面量应为 1 个 token，实际 %d 个", len(values))
	}
	text, err := unquote(values[0])
	*s = StringLiteral(text)
	return err
}

// Parse parses a scene from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a scene from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// consumeLexeme takes the next token; strings come back unquoted in Value.
func consumeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	l := &Lexeme{Type: tokenKinds[tok.Type], Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if tok.Type == stringTokenType {
		var err error
		if l.Value, err = unquote(tok.Value); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// splitSign consumes a signed Number token and returns it as a `-` symbol
// followed by the unsigned number.
func splitSign(lex *lexer.PeekingLexer) (*Lexeme, *Lexeme, error) {
	number, err := consumeLexeme(lex)
	if err != nil {
		return nil, nil, err
	}
	minus := &Lexeme{Type: "Symbol", Value: "-", Raw: "-", Pos: number.Pos}
	number.Value = strings.TrimPrefix(number.Value, "-")
	number.Raw = strings.TrimPrefix(number.Raw, "-")
	number.Pos.Column++
	number.Pos.Offset++
	return minus, number, nil
}

func shouldStopArg(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return true
	case symbolTokenType:
		return tok.Value == ";"
	default:
		return false
	}
}

func stopExpression(tok *lexer.Token, depth int) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineTokenType, rbraceTokenType, lbraceTokenType:
		return depth == 0
	case symbolTokenType:
		switch tok.Value {
		case ";", ",", "]":
			return depth == 0
		}
	}
	return false
}

func unquote(raw string) (string, error) {
	text, err := strconv.Unquote(raw)
	if err != nil {
		return "", fmt.Errorf("无法解析字符串 %s: %w", raw, err)
	}
	return text, nil
}

func tokenType(name string) lexer.TokenType {
	tt, ok := sceneLexer.Symbols()[name]
	if !ok {
		panic("dsl: lexer has no rule " + name)
	}
	return tt
}
