// Package highlight renders syntax-highlighted HTML for snippets.
//
// It wraps alecthomas/chroma, which ships lexers for a few hundred
// languages and a registry of colour styles. The package exposes a small
// Renderer type so call sites depend on OUR interface, not on chroma —
// swapping the highlighting library would only touch this file.
//
// DETERMINISM MATTERS HERE:
// The service layer stores the rendered HTML on the snippet row and serves
// it verbatim from /highlight/. Render must therefore be a pure function
// of (code, language, style, linenos) — same inputs, byte-identical output.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Renderer produces standalone HTML fragments for snippet code.
type Renderer struct{}

// New creates a Renderer. It is stateless and safe for concurrent use.
func New() *Renderer {
	return &Renderer{}
}

// SupportedLanguage reports whether chroma has a lexer for the given
// language name or alias. Matching is case-insensitive ("Python",
// "python", and "py" all resolve).
func (r *Renderer) SupportedLanguage(language string) bool {
	return lexers.Get(strings.ToLower(language)) != nil
}

// SupportedStyle reports whether the named colour style exists in
// chroma's style registry.
func (r *Renderer) SupportedStyle(style string) bool {
	_, ok := styles.Registry[strings.ToLower(style)]
	return ok
}

// Render highlights code and returns a complete HTML document with the
// style's CSS inlined, so the result can be served as-is with
// Content-Type: text/html.
//
// Callers are expected to validate language and style first (the service
// does, at create/update time); unknown values here are a programming
// error and surface as one.
func (r *Renderer) Render(code, language, style string, linenos bool) (string, error) {
	lexer := lexers.Get(strings.ToLower(language))
	if lexer == nil {
		return "", fmt.Errorf("highlight: no lexer for language %q", language)
	}
	// Coalesce merges adjacent same-type tokens — smaller output, same rendering.
	lexer = chroma.Coalesce(lexer)

	st, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		return "", fmt.Errorf("highlight: no style named %q", style)
	}

	formatter := html.New(
		html.Standalone(true),
		html.WithLineNumbers(linenos),
	)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("highlight: tokenising %s code: %w", language, err)
	}

	var b strings.Builder
	if err := formatter.Format(&b, st, iterator); err != nil {
		return "", fmt.Errorf("highlight: formatting: %w", err)
	}

	return b.String(), nil
}
