// Package render builds HTML as a typed node tree. Text and attribute values
// are escaped when written, so record data never reaches the page unescaped.
package render

import (
	"bytes"
	"html"
	"io"
	"sort"
	"strings"
)

// Attrs holds element attributes. Keys are written in sorted order.
type Attrs map[string]string

// Node is either an element or a text node.
type Node struct {
	Tag      string
	Attrs    Attrs
	Children []Node
	text     string
	raw      bool
}

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "link": true, "meta": true,
}

// El returns an element node.
func El(tag string, attrs Attrs, children ...Node) Node {
	return Node{Tag: tag, Attrs: attrs, Children: children}
}

// Text returns an escaped text node.
func Text(s string) Node {
	return Node{text: s}
}

// Raw returns a node written verbatim. Only use it for trusted constants.
func Raw(s string) Node {
	return Node{text: s, raw: true}
}

// Fragment groups nodes without a wrapping element.
func Fragment(children ...Node) Node {
	return Node{Children: children}
}

// Write serialises n to w.
func Write(w io.Writer, n Node) error {
	sw := &stickyWriter{w: w}
	n.write(sw)
	return sw.err
}

// String renders n into a string.
func String(n Node) string {
	var buf bytes.Buffer
	_ = Write(&buf, n)
	return buf.String()
}

func (n Node) write(w *stickyWriter) {
	if n.Tag == "" {
		if n.raw {
			w.str(n.text)
		} else if n.text != "" {
			w.str(html.EscapeString(n.text))
		}
		for _, c := range n.Children {
			c.write(w)
		}
		return
	}

	w.str("<")
	w.str(n.Tag)
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.str(" ")
		w.str(html.EscapeString(strings.ToLower(k)))
		w.str(`="`)
		w.str(html.EscapeString(n.Attrs[k]))
		w.str(`"`)
	}
	w.str(">")
	if voidTags[n.Tag] {
		return
	}
	for _, c := range n.Children {
		c.write(w)
	}
	w.str("</")
	w.str(n.Tag)
	w.str(">")
}

type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) str(v string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, v)
}
