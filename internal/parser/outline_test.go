package parser

import (
	"slices"
	"strings"
	"testing"

	"github.com/dgallion1/notegest/internal/doctree"
	"github.com/dgallion1/notegest/internal/section"
)

const note = `---
title: Photosynthesis
tags: ["biology", "plants"]
---
# Photosynthesis

## SECTION 1: INTRODUCTION/OVERVIEW
Plants convert light
into chemical energy.

## SECTION 2: KEY CONCEPTS/DEFINITIONS
*   **Chlorophyll:** pigment.
*   **Stroma:** fluid.

## SECTION 3: EVIDENCE/SUPPORTING DETAILS
Oxygen is released.

### Sources
` + "```\nlab notes\n```\n"

func TestParseOutline_FrontMatterAndHeadings(t *testing.T) {
	o, err := ParseOutline([]byte(note), "photo.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Title != "Photosynthesis" {
		t.Errorf("expected title from front matter, got %q", o.Title)
	}
	if !slices.Equal(o.Tags, []string{"biology", "plants"}) {
		t.Errorf("unexpected tags %v", o.Tags)
	}

	if len(o.Headings) != 1 || o.Headings[0].Level != 1 {
		t.Fatalf("expected one h1, got %+v", o.Headings)
	}
	h1 := o.Headings[0]
	if len(h1.Children) != 3 {
		t.Fatalf("expected 3 h2 sections, got %d", len(h1.Children))
	}
	intro := h1.Children[0]
	if "## "+intro.Title != section.Intro {
		t.Errorf("unexpected intro title %q", intro.Title)
	}
	if !strings.Contains(intro.Text, "chemical energy.") {
		t.Errorf("expected intro text, got %q", intro.Text)
	}
	concepts := h1.Children[1]
	if !strings.Contains(concepts.Text, "Chlorophyll") || !strings.Contains(concepts.Text, "Stroma") {
		t.Errorf("expected list text, got %q", concepts.Text)
	}
	evidence := h1.Children[2]
	if len(evidence.Children) != 1 || evidence.Children[0].Title != "Sources" {
		t.Fatalf("expected h3 under evidence, got %+v", evidence.Children)
	}
	if !strings.Contains(evidence.Children[0].Text, "lab notes") {
		t.Errorf("expected code block text, got %q", evidence.Children[0].Text)
	}

	if !o.Report.Enhanceable() || !o.Report.HasTagsField {
		t.Errorf("expected enhanceable note with tags field, got %+v", o.Report)
	}
}

func TestParseOutline_NoFrontMatter(t *testing.T) {
	src := "tags: [\"inline\"]\n\n## SECTION 1: INTRODUCTION/OVERVIEW\nx\n"
	o, err := ParseOutline([]byte(src), "dir/my-note.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Title != "my-note" {
		t.Errorf("expected filename title, got %q", o.Title)
	}
	if !slices.Equal(o.Tags, []string{"inline"}) {
		t.Errorf("expected tags from field line, got %v", o.Tags)
	}
	want := []string{section.Concepts, section.Evidence}
	if !slices.Equal(o.Report.MissingHeadings, want) {
		t.Errorf("expected missing %v, got %v", want, o.Report.MissingHeadings)
	}
	if o.Report.Enhanceable() {
		t.Error("expected note not to be enhanceable")
	}
}

func TestCheck_OutOfOrder(t *testing.T) {
	src := section.Intro + "\n" + section.Evidence + "\n" + section.Concepts + "\n"
	r := Check(src)
	if r.InOrder {
		t.Error("expected out-of-order report")
	}
	if len(r.MissingHeadings) != 0 || r.HasTagsField {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestOutlineWalk(t *testing.T) {
	o, err := ParseOutline([]byte(note), "photo.md")
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	o.Walk(func(n *doctree.Node) { titles = append(titles, n.Title) })
	if len(titles) != 5 || titles[4] != "Sources" {
		t.Errorf("unexpected walk order %v", titles)
	}
}

func TestParseOutline_Empty(t *testing.T) {
	o, err := ParseOutline(nil, "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Headings) != 0 || len(o.Report.MissingHeadings) != 3 {
		t.Errorf("unexpected outline %+v", o)
	}
}
