// Package doc implements the documentation-source Ingester of spec.md §4.8
// phase 1, grounded on the teacher corpus's goldmark-based markdown
// rendering (joestump-claude-ops internal/web/server.go's renderMarkdown
// helper): goldmark parses Markdown into an AST, which this ingester walks
// to recover section text for chunking rather than rendering to HTML.
package doc

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// Ingester reads a local Markdown file and chunks it by heading section.
type Ingester struct {
	md goldmark.Markdown
}

// New constructs a documentation Ingester with GFM extensions enabled,
// matching the teacher's goldmark.New(goldmark.WithExtensions(extension.GFM)).
func New() *Ingester {
	return &Ingester{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

var _ ingest.Ingester = (*Ingester)(nil)

// Ingest implements ingest.Ingester for src.Type == "documentation".
func (i *Ingester) Ingest(ctx context.Context, src ingest.Source) ([]model.ContentChunk, error) {
	raw, err := os.ReadFile(src.Ref)
	if err != nil {
		return nil, fmt.Errorf("read documentation source %s: %w", src.Ref, err)
	}

	reader := text.NewReader(raw)
	root := i.md.Parser().Parse(reader)

	sections := sectionize(root, raw)

	var chunks []model.ContentChunk
	for _, section := range sections {
		chunks = append(chunks, ingest.ChunkText(src.KnowledgeID, "documentation", src.Ref, section)...)
	}
	return chunks, nil
}

// sectionize walks the goldmark AST and groups block text under each
// top-level heading into one string per section, so the chunker sees
// semantic (heading-bounded) rather than arbitrary byte boundaries.
func sectionize(root ast.Node, source []byte) []string {
	var sections []string
	var current bytes.Buffer

	flush := func() {
		if current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			flush()
		}
		current.Write(blockText(n, source))
		current.WriteString("\n\n")
	}
	flush()
	return sections
}

func blockText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			buf.WriteByte(' ')
		} else {
			buf.Write(blockText(c, source))
		}
	}
	if buf.Len() == 0 {
		if lines := n.Lines(); lines != nil {
			for idx := 0; idx < lines.Len(); idx++ {
				seg := lines.At(idx)
				buf.Write(seg.Value(source))
			}
		}
	}
	return buf.Bytes()
}
