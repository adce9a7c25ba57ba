package doctree

// Outline is the structural view of a note.
type Outline struct {
	Title    string   `json:"title"`              // From front matter, or the filename
	Tags     []string `json:"tags"`               // Current tags field value
	Headings []*Node  `json:"headings,omitempty"` // Top-level headings
	Report   Report   `json:"report"`
}

// Node is a heading and the text under it, up to its first subheading.
type Node struct {
	Title    string  `json:"title"`
	Level    int     `json:"level"`
	Text     string  `json:"text,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Report says whether a note can be enhanced as is.
type Report struct {
	MissingHeadings []string `json:"missing_headings"`
	InOrder         bool     `json:"in_order"`
	HasTagsField    bool     `json:"has_tags_field"`
}

// Enhanceable reports whether every required heading is present in order.
func (r Report) Enhanceable() bool {
	return len(r.MissingHeadings) == 0 && r.InOrder
}

// Walk visits every node depth-first.
func (o *Outline) Walk(fn func(*Node)) {
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Children)
		}
	}
	walk(o.Headings)
}
