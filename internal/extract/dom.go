// Package extract turns scraped eligibility-response HTML into flat field
// records. A single generic anchor-then-sibling primitive plus a declarative
// per-carrier section schema does all the walking; adding a carrier means
// writing a new schema, not new traversal code.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// findByID returns the first element under n with the given id attribute.
func findByID(n *html.Node, id string) *html.Node {
	return findNode(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && attr(node, "id") == id
	})
}

// findElement returns the first element of the given tag under n whose text
// contains needle. Matches BeautifulSoup's find(tag, text=re.compile(...))
// substring semantics that the upstream scraper scripts relied on.
func findElement(n *html.Node, tag, needle string) *html.Node {
	return findNode(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && node.Data == tag &&
			strings.Contains(nodeText(node), needle)
	})
}

// findWithClass returns the first element of the given tag under n carrying
// the given class.
func findWithClass(n *html.Node, tag, class string) *html.Node {
	return findNode(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && node.Data == tag && hasClass(node, class)
	})
}

// nextSiblingText returns the text of the nth element sibling of the given
// tag after anchor. Returns ok=false if fewer than n such siblings exist.
func nextSiblingText(anchor *html.Node, tag string, n int) (string, bool) {
	sib := nextElemSibling(anchor, tag, n)
	if sib == nil {
		return "", false
	}
	return nodeText(sib), true
}

// nextElemSibling returns the nth following sibling element of the given
// tag, or nil.
func nextElemSibling(anchor *html.Node, tag string, n int) *html.Node {
	steps := 0
	for sib := anchor.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || sib.Data != tag {
			continue
		}
		steps++
		if steps == n {
			return sib
		}
	}
	return nil
}

// anchorSiblingText is the generic extraction primitive: locate an anchor
// element by (tag, text substring) under root, then return the text of the
// nth following sibling element of sibTag.
func anchorSiblingText(root *html.Node, anchorTag, anchorText, sibTag string, n int) (string, bool) {
	anchor := findElement(root, anchorTag, anchorText)
	if anchor == nil {
		return "", false
	}
	return nextSiblingText(anchor, sibTag, n)
}

// nodeText concatenates the text content of n's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	textInto(&b, n, false)
	return b.String()
}

// nodeTextWithBreaks is nodeText with <br> elements rendered as ", ". Used
// for the coverage-type cell, where line breaks separate coverage names.
func nodeTextWithBreaks(n *html.Node) string {
	var b strings.Builder
	textInto(&b, n, true)
	return b.String()
}

func textInto(b *strings.Builder, n *html.Node, breaks bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if breaks && c.Data == "br" {
				b.WriteString(", ")
				continue
			}
			textInto(b, c, breaks)
		}
	}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
