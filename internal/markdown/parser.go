package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	attributeLineRe  = regexp.MustCompile(`^([A-Za-z]+)::(.*)$`)
	wikiLinkRe       = regexp.MustCompile(`^\[\[([^\]]+)\]\]`)
	blockReferenceRe = regexp.MustCompile(`^\(\(([^)]+)\)\)\s*$`)
)

// attributeParser turns a whole `name:: value` line into an Attribute.
//
// goldmark fires halfspace triggers at the head of every line, which is the
// only place an attribute may start. Leading indentation is skipped.
type attributeParser struct{}

func (p *attributeParser) Trigger() []byte {
	return []byte{' '}
}

func (p *attributeParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if !atLineStart(parent) {
		return nil
	}
	line, _ := block.PeekLine()
	line = bytes.TrimLeft(line, " \t")
	if len(line) == 0 || !isASCIILetter(line[0]) {
		return nil
	}
	m := attributeLineRe.FindSubmatch(bytes.TrimRight(line, "\r\n"))
	if m == nil {
		return nil
	}
	block.AdvanceLine()
	return NewAttribute(string(m[1]), strings.TrimSpace(string(m[2])))
}

// atLineStart reports whether the next inline appended to parent begins a
// new line: nothing precedes it, or the previous line was fully consumed.
func atLineStart(parent ast.Node) bool {
	switch last := parent.LastChild().(type) {
	case nil:
		return true
	case *ast.Text:
		return last.SoftLineBreak() || last.HardLineBreak()
	case *Attribute:
		return true
	}
	return false
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// wikiLinkParser parses `[[page]]` anywhere inline. It runs ahead of the
// standard link parser, which would otherwise claim the brackets.
type wikiLinkParser struct{}

func (p *wikiLinkParser) Trigger() []byte {
	return []byte{'['}
}

func (p *wikiLinkParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := wikiLinkRe.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return NewWikiLink(string(m[1]))
}

// blockReferenceParser only matches when `((id))` is the entire inline
// content of its block.
type blockReferenceParser struct{}

func (p *blockReferenceParser) Trigger() []byte {
	return []byte{'('}
}

func (p *blockReferenceParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if parent.LastChild() != nil {
		return nil
	}
	if lineNo, _ := block.Position(); lineNo != parent.Lines().Len()-1 {
		return nil
	}
	line, _ := block.PeekLine()
	m := blockReferenceRe.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.AdvanceLine()
	return NewBlockReference(string(m[1]))
}
