package menu

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Format selects how a view's text is rendered by the transport.
type Format int

const (
	// FormatPlain sends the text without a parse mode.
	FormatPlain Format = iota
	// FormatMarkdown sends the text with Telegram legacy Markdown.
	FormatMarkdown
)

// String reports the format name used in logs.
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	default:
		return "plain"
	}
}

// Choice is a single inline button: the label shown and the event code it emits.
type Choice struct {
	Label string
	Code  string
}

// Node is a static menu screen. An empty Text means the caller supplies it.
type Node struct {
	Key    string
	Text   string
	Rows   [][]Choice
	Format Format
}

// View is a renderable screen: message text plus ordered rows of choices.
type View struct {
	Text   string
	Rows   [][]Choice
	Format Format
}

// Codes returns every choice code of the view in row order.
func (v View) Codes() []string {
	var out []string
	for _, row := range v.Rows {
		for _, c := range row {
			out = append(out, c.Code)
		}
	}
	return out
}

var (
	// ErrDuplicateNode is returned when two nodes share a key.
	ErrDuplicateNode = errors.New("menu: duplicate node key")
	// ErrEmptyNodeKey is returned for a node without a key.
	ErrEmptyNodeKey = errors.New("menu: empty node key")
	// ErrUnknownNode is returned when a route targets a node that does not exist.
	ErrUnknownNode = errors.New("menu: unknown node")
	// ErrUnresolvedChoice is returned when a choice code resolves to nothing.
	ErrUnresolvedChoice = errors.New("menu: unresolved choice code")
)

// Graph is an immutable table of menu nodes indexed by key.
type Graph struct {
	nodes map[string]*Node
	keys  []string
}

// NewGraph copies the given nodes into a graph, rejecting empty and duplicate keys.
func NewGraph(nodes []Node) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*Node, len(nodes))}
	for i := range nodes {
		n := cloneNode(nodes[i])
		if strings.TrimSpace(n.Key) == "" {
			return nil, fmt.Errorf("node #%d: %w", i, ErrEmptyNodeKey)
		}
		if _, exists := g.nodes[n.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.Key)
		}
		g.nodes[n.Key] = &n
		g.keys = append(g.keys, n.Key)
	}
	sort.Strings(g.keys)
	return g, nil
}

// Node returns the node stored under key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Keys returns node keys in sorted order.
func (g *Graph) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Render builds the view for the node. text replaces the node text when the node has none.
func (g *Graph) Render(key, text string) (View, error) {
	n, ok := g.nodes[key]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownNode, key)
	}
	if n.Text != "" {
		text = n.Text
	}
	return View{Text: text, Rows: cloneRows(n.Rows), Format: n.Format}, nil
}

// Validate checks that every choice code of every node resolves.
// resolve returns the key of the node the code leads to.
func (g *Graph) Validate(resolve func(code string) (string, error)) error {
	var errs []error
	for _, key := range g.keys {
		for _, row := range g.nodes[key].Rows {
			for _, c := range row {
				target, err := resolve(c.Code)
				if err != nil {
					errs = append(errs, fmt.Errorf("%w: node %s choice %q code %q: %v", ErrUnresolvedChoice, key, c.Label, c.Code, err))
					continue
				}
				if _, ok := g.nodes[target]; !ok {
					errs = append(errs, fmt.Errorf("%w: node %s choice %q code %q leads to %q", ErrUnresolvedChoice, key, c.Label, c.Code, target))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Unreachable walks the graph from root and returns keys never visited.
func (g *Graph) Unreachable(root string, resolve func(code string) (string, error)) []string {
	visited := make(map[string]bool, len(g.nodes))
	queue := []string{root}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		n, ok := g.nodes[key]
		if !ok {
			continue
		}
		visited[key] = true
		for _, row := range n.Rows {
			for _, c := range row {
				target, err := resolve(c.Code)
				if err != nil || visited[target] {
					continue
				}
				queue = append(queue, target)
			}
		}
	}
	var out []string
	for _, key := range g.keys {
		if !visited[key] {
			out = append(out, key)
		}
	}
	return out
}

func cloneNode(n Node) Node {
	n.Rows = cloneRows(n.Rows)
	return n
}

func cloneRows(rows [][]Choice) [][]Choice {
	if rows == nil {
		return nil
	}
	out := make([][]Choice, len(rows))
	for i, row := range rows {
		out[i] = append([]Choice(nil), row...)
	}
	return out
}
