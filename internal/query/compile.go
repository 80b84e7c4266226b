package query

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"boqview/internal/model"
)

var (
	ErrInvalidPattern    = eris.New("invalid search pattern")
	ErrInvalidExpression = eris.New("invalid where expression")
)

// Matcher is a compiled description predicate.
type Matcher struct {
	mode   model.MatchMode
	tokens []string
	// ALL keeps one regexp per token; ANY keeps a single alternation.
	res []*regexp.Regexp
}

// Keywords splits free text into tokens on runs of whitespace. Text is NFC
// normalized first so composed and decomposed input produce the same tokens.
func Keywords(text string) []string {
	return strings.Fields(norm.NFC.String(strings.TrimSpace(text)))
}

// Compile turns free text into a description matcher. Empty input yields a nil
// matcher and no error. Tokens always match literally.
func Compile(text string, mode model.MatchMode) (*Matcher, error) {
	tokens := Keywords(text)
	if len(tokens) == 0 {
		return nil, nil
	}
	m := &Matcher{mode: mode, tokens: tokens}
	if mode == model.MatchAny {
		parts := make([]string, len(tokens))
		for i, t := range tokens {
			parts[i] = regexp.QuoteMeta(t)
		}
		re, err := regexp.Compile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
		if err != nil {
			return nil, eris.Wrapf(ErrInvalidPattern, "compile %q: %v", text, err)
		}
		m.res = []*regexp.Regexp{re}
		return m, nil
	}
	m.res = make([]*regexp.Regexp, 0, len(tokens))
	for _, t := range tokens {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(t))
		if err != nil {
			return nil, eris.Wrapf(ErrInvalidPattern, "compile token %q: %v", t, err)
		}
		m.res = append(m.res, re)
	}
	return m, nil
}

func (m *Matcher) Mode() model.MatchMode { return m.mode }

func (m *Matcher) Tokens() []string {
	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Match reports whether description satisfies the matcher.
func (m *Matcher) Match(description string) bool {
	text := norm.NFC.String(description)
	if m.mode == model.MatchAny {
		return m.res[0].MatchString(text)
	}
	for _, re := range m.res {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}

// Compiled is a committed query ready to run against rows.
type Compiled struct {
	Query model.Query
	Text  *Matcher
	Where *Expr
}

// CompileQuery compiles both halves of q. An empty query compiles to nil.
func CompileQuery(q model.Query) (*Compiled, error) {
	if q.Empty() {
		return nil, nil
	}
	text, err := Compile(q.Text, q.Mode)
	if err != nil {
		return nil, err
	}
	where, err := CompileExpr(q.Where)
	if err != nil {
		return nil, err
	}
	return &Compiled{Query: q, Text: text, Where: where}, nil
}

func (c *Compiled) Match(r model.Row) bool {
	if c.Text != nil && !c.Text.Match(r.Description) {
		return false
	}
	if c.Where != nil && !c.Where.Match(r) {
		return false
	}
	return true
}
