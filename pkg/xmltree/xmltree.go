// Package xmltree turns XML text into a navigable element tree and answers
// simple tag queries on it.
//
// Tags are matched as literal strings: a query containing a colon ("dc:title")
// is compared with the prefixed name of an element, a query without one
// ("coreProperties") with its local name. Namespace URIs are never resolved.
package xmltree

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"
)

// Tree is a parsed XML document. A Tree built from malformed input is empty.
type Tree struct {
	doc *etree.Document
	err error
}

// Parse reads text into a Tree. It never fails: if text is not well-formed
// XML the returned Tree contains no elements and Err reports why.
func Parse(text string) *Tree {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromString(text); err != nil {
		return &Tree{doc: etree.NewDocument(), err: err}
	}
	return &Tree{doc: doc}
}

// Node returns the document node, the parent of the root element.
func (t *Tree) Node() *etree.Element {
	return &t.doc.Element
}

// Err returns the parse error, if any. It is meant for diagnostics only.
func (t *Tree) Err() error {
	return t.err
}

// charsetReader transcodes documents declaring a non-UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Matches reports whether el carries the given tag.
func Matches(el *etree.Element, tag string) bool {
	if strings.ContainsRune(tag, ':') {
		return el.FullTag() == tag
	}
	return el.Tag == tag
}

// Descendants returns all elements below node with the given tag,
// in document order. node itself is not included.
func Descendants(node *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if Matches(child, tag) {
				found = append(found, child)
			}
			walk(child)
		}
	}
	if node != nil {
		walk(node)
	}
	return found
}

// First returns the first descendant of node with the given tag or nil.
func First(node *etree.Element, tag string) *etree.Element {
	if node == nil {
		return nil
	}
	for _, child := range node.ChildElements() {
		if Matches(child, tag) {
			return child
		}
		if el := First(child, tag); el != nil {
			return el
		}
	}
	return nil
}

// Children returns the direct child elements of node with the given tag,
// in document order.
func Children(node *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	if node == nil {
		return found
	}
	for _, child := range node.ChildElements() {
		if Matches(child, tag) {
			found = append(found, child)
		}
	}
	return found
}

// FirstChildElement returns the first child of node that is an element,
// skipping character data, comments and processing instructions.
func FirstChildElement(node *etree.Element) *etree.Element {
	if node == nil {
		return nil
	}
	for _, tok := range node.Child {
		if el, ok := tok.(*etree.Element); ok {
			return el
		}
	}
	return nil
}

// TextContent concatenates all character data below el, CDATA sections
// included and comments excluded.
func TextContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				sb.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return sb.String()
}

// Attr returns the value of the attribute key and whether it exists.
// An unprefixed key matches the attribute whatever its prefix is,
// so "name" finds meta:name.
func Attr(el *etree.Element, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	if strings.ContainsRune(key, ':') {
		for _, a := range el.Attr {
			if a.FullKey() == key {
				return a.Value, true
			}
		}
		return "", false
	}
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
