package jira

// Node is an Atlassian Document Format node. Jira Cloud v3 expects rich
// text fields such as description in this shape.
type Node struct {
	Type    string         `json:"type"`
	Version int            `json:"version,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

type Mark struct {
	Type string `json:"type"`
}

func Doc(content ...Node) Node {
	return Node{Type: "doc", Version: 1, Content: content}
}

func Text(s string) Node {
	return Node{Type: "text", Text: s}
}

func Strong(s string) Node {
	return Node{Type: "text", Text: s, Marks: []Mark{{Type: "strong"}}}
}

func Paragraph(inline ...Node) Node {
	return Node{Type: "paragraph", Content: inline}
}

func Heading(level int, s string) Node {
	return Node{Type: "heading", Attrs: map[string]any{"level": level}, Content: []Node{Text(s)}}
}

// BulletList renders one list item per entry. ADF rejects empty lists, so
// no entries yields a single "None" item.
func BulletList(items ...string) Node {
	if len(items) == 0 {
		items = []string{"None"}
	}
	list := Node{Type: "bulletList"}
	for _, item := range items {
		list.Content = append(list.Content, Node{
			Type:    "listItem",
			Content: []Node{Paragraph(Text(item))},
		})
	}
	return list
}
