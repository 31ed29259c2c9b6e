// Package selector implements the small CSS selector subset needed to read
// search result listings out of scraped pages: compound tag/#id/.class
// selectors joined by descendant (whitespace) or child (">") combinators.
package selector

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a compiled selector chain such as "ul#results > li.item a".
type Selector struct {
	steps []step
}

type step struct {
	compound
	// child marks this step as joined to the previous one by ">".
	child bool
}

type compound struct {
	tag     string // empty or "*" matches any element
	id      string
	classes []string
}

// Parse compiles a selector string. Supported syntax: element names, "#id",
// ".class" (repeatable), "*", the descendant combinator (whitespace), and the
// child combinator ">".
func Parse(s string) (Selector, error) {
	// Surround ">" with spaces so "a>b" and "a > b" tokenize the same way.
	tokens := strings.Fields(strings.ReplaceAll(s, ">", " > "))
	if len(tokens) == 0 {
		return Selector{}, fmt.Errorf("empty selector %q", s)
	}
	var sel Selector
	child := false
	for _, tok := range tokens {
		if tok == ">" {
			if child || len(sel.steps) == 0 {
				return Selector{}, fmt.Errorf("misplaced %q in selector %q", ">", s)
			}
			child = true
			continue
		}
		c, err := parseCompound(tok)
		if err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", s, err)
		}
		sel.steps = append(sel.steps, step{compound: c, child: child})
		child = false
	}
	if child {
		return Selector{}, fmt.Errorf("selector %q ends with %q", s, ">")
	}
	return sel, nil
}

func parseCompound(tok string) (compound, error) {
	var c compound
	rest := tok
	// Leading element name, if any.
	if i := strings.IndexAny(rest, ".#"); i != 0 {
		if i < 0 {
			i = len(rest)
		}
		c.tag = strings.ToLower(rest[:i])
		rest = rest[i:]
	}
	if c.tag == "*" {
		c.tag = ""
	}
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			return compound{}, fmt.Errorf("empty %q name in %q", string(kind), tok)
		}
		switch kind {
		case '#':
			if c.id != "" {
				return compound{}, fmt.Errorf("multiple ids in %q", tok)
			}
			c.id = name
		case '.':
			c.classes = append(c.classes, name)
		}
	}
	return c, nil
}

// MustParse is Parse for selectors known to be valid, typically literals in
// tests.
func MustParse(s string) Selector {
	sel, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// Select returns every element under root matching the selector, in document
// order. root itself is never a candidate, but it may satisfy an ancestor
// step; ancestor matching does not climb above root, so item-scoped lookups
// stay scoped.
func (sel Selector) Select(root *html.Node) []*html.Node {
	if root == nil || len(sel.steps) == 0 {
		return nil
	}
	var out []*html.Node
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && sel.matchStep(len(sel.steps)-1, c, root) {
				out = append(out, c)
			}
			dfs(c)
		}
	}
	dfs(root)
	return out
}

// SelectOne returns the first match in document order, or nil.
func (sel Selector) SelectOne(root *html.Node) *html.Node {
	if root == nil || len(sel.steps) == 0 {
		return nil
	}
	var found *html.Node
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && sel.matchStep(len(sel.steps)-1, c, root) {
				found = c
				return
			}
			dfs(c)
		}
	}
	dfs(root)
	return found
}

// matchStep reports whether steps[0..i] can match ending at n, walking
// ancestors no higher than root.
func (sel Selector) matchStep(i int, n, root *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !sel.steps[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	if sel.steps[i].child {
		return sel.matchStep(i-1, parentElement(n, root), root)
	}
	for p := parentElement(n, root); p != nil; p = parentElement(p, root) {
		if sel.matchStep(i-1, p, root) {
			return true
		}
	}
	return false
}

func (c compound) matches(n *html.Node) bool {
	if c.tag != "" && !strings.EqualFold(n.Data, c.tag) {
		return false
	}
	if c.id != "" && Attr(n, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(Attr(n, "class"))
		for _, want := range c.classes {
			ok := false
			for _, h := range have {
				if h == want {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
	}
	return true
}

// parentElement returns the nearest element ancestor, or nil at root.
func parentElement(n, root *html.Node) *html.Node {
	if n == root {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
		if p == root {
			return nil
		}
	}
	return nil
}

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
