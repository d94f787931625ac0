package highlight

import (
	"crypto/sha256"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
)

// chroma style used for each viewer theme.
var themeStyles = map[string]string{
	"dark":    "native",
	"light":   "github",
	"monokai": "monokai",
	"nord":    "nord",
	"gruvbox": "gruvbox",
}

type Token struct {
	Text  string
	Style tcell.Style
}

type StyledLine struct {
	Tokens []Token
}

type cacheKey struct {
	lang string
	sum  [sha256.Size]byte
}

type Highlighter struct {
	style *chroma.Style
	base  tcell.Style
	cache map[cacheKey][]StyledLine
}

// New returns a highlighter drawing on base with the chroma style matching
// the viewer theme name.
func New(theme string, base tcell.Style) *Highlighter {
	name, ok := themeStyles[theme]
	if !ok {
		name = "monokai"
	}
	return &Highlighter{
		style: styles.Get(name),
		base:  base,
		cache: make(map[cacheKey][]StyledLine),
	}
}

// Reset drops every cached document, e.g. after a reload.
func (h *Highlighter) Reset() {
	h.cache = make(map[cacheKey][]StyledLine)
}

// Lines tokenises the whole document and returns one StyledLine per line.
// Results are cached by language and content hash.
func (h *Highlighter) Lines(code, lang string) []StyledLine {
	key := cacheKey{lang: lang, sum: sha256.Sum256([]byte(code))}
	if cached, ok := h.cache[key]; ok {
		return cached
	}

	lines := strings.Split(code, "\n")
	styled := make([]StyledLine, len(lines))

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		for i, l := range lines {
			styled[i] = StyledLine{Tokens: []Token{{Text: l, Style: h.base}}}
		}
		return styled
	}

	current := 0
	for _, tok := range iter.Tokens() {
		style := h.tokenStyle(tok.Type)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				current++
			}
			if current >= len(styled) {
				break
			}
			if part != "" {
				styled[current].Tokens = append(styled[current].Tokens, Token{Text: part, Style: style})
			}
		}
	}

	h.cache[key] = styled
	return styled
}

func DetectLanguage(filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return ""
	}
	config := lexer.Config()
	if config == nil {
		return ""
	}
	return config.Name
}

func (h *Highlighter) tokenStyle(t chroma.TokenType) tcell.Style {
	st := h.base
	entry := h.style.Get(t)
	if entry.Colour.IsSet() {
		st = st.Foreground(tcell.NewRGBColor(int32(entry.Colour.Red()), int32(entry.Colour.Green()), int32(entry.Colour.Blue())))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}
