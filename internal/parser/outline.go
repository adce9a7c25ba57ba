// Package parser builds note outlines from markdown.
package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/notegest/internal/doctree"
	"github.com/dgallion1/notegest/internal/section"
	"github.com/dgallion1/notegest/internal/tags"
)

type noteMeta struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// ParseOutline reads the front matter and heading tree of a note and checks
// it against the note template.
func ParseOutline(src []byte, filename string) (*doctree.Outline, error) {
	var meta noteMeta
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	out := &doctree.Outline{
		Title:    meta.Title,
		Tags:     meta.Tags,
		Headings: headingTree(body),
		Report:   Check(string(src)),
	}
	if out.Title == "" {
		out.Title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if len(out.Tags) == 0 && out.Report.HasTagsField {
		if current, err := tags.Current(string(src)); err == nil {
			out.Tags = current
		}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}

// Check reports which required headings are missing, whether the present
// ones are in template order, and whether a tags field exists.
func Check(note string) doctree.Report {
	first := make(map[string]int, len(section.Required))
	for s := range section.Scan(note) {
		if _, seen := first[s.Title()]; !seen {
			first[s.Title()] = s.Start
		}
	}

	r := doctree.Report{MissingHeadings: []string{}, InOrder: true}
	last := -1
	for _, h := range section.Required {
		pos, ok := first[h]
		if !ok {
			r.MissingHeadings = append(r.MissingHeadings, h)
			continue
		}
		if pos < last {
			r.InOrder = false
		}
		last = pos
	}
	_, err := tags.FindField(note)
	r.HasTagsField = err == nil
	return r
}

// headingTree nests headings by level. Text before the first heading is
// dropped.
func headingTree(src []byte) []*doctree.Node {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		node  *doctree.Node
		level int
	}
	root := &doctree.Node{}
	stack := []stackEntry{{node: root, level: 0}}

	var pending bytes.Buffer
	flush := func() {
		t := strings.TrimSpace(pending.String())
		pending.Reset()
		top := stack[len(stack)-1].node
		if t == "" || top == root {
			return
		}
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			if t := blockText(n, src); t != "" {
				if pending.Len() > 0 {
					pending.WriteString("\n\n")
				}
				pending.WriteString(t)
			}
			continue
		}
		flush()

		node := &doctree.Node{Title: string(h.Text(src)), Level: h.Level}
		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: h.Level})
	}
	flush()
	return root.Children
}

// blockText gets the raw source lines of a block, or of its child blocks
// when it has none of its own.
func blockText(n ast.Node, src []byte) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	if lines := n.Lines(); lines.Len() > 0 {
		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
