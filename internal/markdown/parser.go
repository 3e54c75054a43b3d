package markdown

import (
	"bytes"
	"errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

var ErrNoFrontmatter = errors.New("document has no front matter")

// Parser renders exercise descriptions and reads catalog documents.
// Raw HTML in the source is not rendered.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

// Render converts markdown to HTML.
func (p *Parser) Render(source string) (string, error) {
	var buf bytes.Buffer
	err := p.md.Convert([]byte(source), &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document decodes the TOML (+++) or YAML (---) front matter of source into
// meta and returns the markdown body that follows it.
func (p *Parser) Document(source []byte, meta any) ([]byte, error) {
	context := parser.NewContext()
	p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	data := frontmatter.Get(context)
	if data == nil {
		return nil, ErrNoFrontmatter
	}

	err := data.Decode(meta)
	if err != nil {
		return nil, err
	}

	return bytes.TrimSpace(body(source)), nil
}

// body returns what follows the closing front matter delimiter.
func body(source []byte) []byte {
	lines := bytes.SplitAfter(source, []byte("\n"))
	if len(lines) == 0 {
		return nil
	}

	delim := bytes.TrimSpace(lines[0])
	offset := len(lines[0])
	for _, line := range lines[1:] {
		offset += len(line)
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return source[offset:]
		}
	}
	return nil
}
