// Package trello turns the comments of a Trello board export into notes
// laid out like the study note template.
package trello

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/dgallion1/notegest/internal/notestore"
)

//go:embed templates/note.md
var templates embed.FS

const commentType = "commentCard"

// Note is one rendered comment.
type Note struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type export struct {
	Actions []action `json:"actions"`
}

type action struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Date string `json:"date"`
	Data struct {
		Text string `json:"text"`
		Card struct {
			Name string `json:"name"`
		} `json:"card"`
	} `json:"data"`
}

// Converter renders comments through a note template.
type Converter struct {
	tpl *pongo2.Template
}

// NewConverter compiles the template at templatePath, or the built-in note
// template when templatePath is empty. The template sees card_name, note,
// date, and title (card_name quoted for YAML).
func NewConverter(templatePath string) (*Converter, error) {
	var (
		src []byte
		err error
	)
	if templatePath != "" {
		src, err = os.ReadFile(templatePath)
	} else {
		src, err = templates.ReadFile("templates/note.md")
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	set := pongo2.NewSet("trello", pongo2.MustNewLocalFileSystemLoader(""))
	tpl, err := set.FromBytes(src)
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	return &Converter{tpl: tpl}, nil
}

// Convert renders every comment action of a board export. Filenames are
// unique within the result.
func (c *Converter) Convert(data []byte) ([]Note, error) {
	var ex export
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	seen := make(map[string]bool)
	notes := []Note{}
	for _, a := range ex.Actions {
		if a.Type != commentType {
			continue
		}
		content, err := c.render(a)
		if err != nil {
			return nil, fmt.Errorf("render comment %s: %w", a.ID, err)
		}
		name := uniqueName(Filename(a.Date, a.Data.Card.Name, a.ID), seen)
		notes = append(notes, Note{Filename: name, Content: content})
	}
	return notes, nil
}

func (c *Converter) render(a action) (string, error) {
	title, err := json.Marshal(a.Data.Card.Name)
	if err != nil {
		return "", err
	}
	return c.tpl.Execute(pongo2.Context{
		"card_name": a.Data.Card.Name,
		"note":      a.Data.Text,
		"date":      a.Date,
		"title":     string(title),
	})
}

// WriteAll stores notes in dir without overwriting existing files and
// returns the written paths.
func WriteAll(notes []Note, dir notestore.Dir) ([]string, error) {
	taken := make(map[string]bool, len(notes))
	paths := make([]string, 0, len(notes))
	for _, n := range notes {
		p, err := dir.WriteNew(n.Filename, n.Content, taken)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Filename builds "<YYYY-MM-DD>_<slug>_<id>.md" from a comment's date,
// card name, and id.
func Filename(date, cardName, id string) string {
	if len(date) > 10 {
		date = date[:10]
	}
	return date + "_" + Slugify(cardName) + "_" + id + ".md"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify keeps runs of a-z and 0-9 joined by single hyphens. An empty
// result becomes "card".
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "card"
	}
	return s
}

func uniqueName(name string, seen map[string]bool) string {
	stem, ext := strings.TrimSuffix(name, ".md"), ".md"
	candidate := name
	for n := 2; seen[candidate]; n++ {
		candidate = stem + "-" + strconv.Itoa(n) + ext
	}
	seen[candidate] = true
	return candidate
}
