package transform

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"catalog/feedsync/internal/domain"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	texttransform "golang.org/x/text/transform"
)

type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
)

// Attr is an attribute with its name kept as written in the source, prefix included.
type Attr struct {
	Name  string
	Value string
}

// Node is an in-memory XML tree node. Text and comment nodes carry Text and no Name.
type Node struct {
	Kind  NodeKind
	Name  string
	Attrs []Attr
	Text  string
	Nodes []*Node
}

func NewElement(name string) *Node {
	return &Node{Kind: ElementNode, Name: name}
}

// AppendChild adds child as the last node and returns it. Adjacent text is merged.
func (n *Node) AppendChild(child *Node) *Node {
	if child.Kind == TextNode && len(n.Nodes) > 0 {
		if last := n.Nodes[len(n.Nodes)-1]; last.Kind == TextNode {
			last.Text += child.Text
			return last
		}
	}
	n.Nodes = append(n.Nodes, child)
	return child
}

// SubElement appends an element holding text. An empty text yields an empty element.
func (n *Node) SubElement(name, text string) *Node {
	child := NewElement(name)
	if text != "" {
		child.AppendChild(&Node{Kind: TextNode, Text: text})
	}
	return n.AppendChild(child)
}

func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the first child element with the given name, or nil.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Nodes {
		if child.Kind == ElementNode && child.Name == name {
			return child
		}
	}
	return nil
}

// FindAll returns the child elements with the given name in document order.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var found []*Node
	for _, child := range n.Nodes {
		if child.Kind == ElementNode && child.Name == name {
			found = append(found, child)
		}
	}
	return found
}

// Elements returns the child elements in document order.
func (n *Node) Elements() []*Node {
	var elems []*Node
	for _, child := range n.Nodes {
		if child.Kind == ElementNode {
			elems = append(elems, child)
		}
	}
	return elems
}

// InnerText returns the text directly under n that precedes its first
// child element. Comments are skipped.
func (n *Node) InnerText() string {
	var sb strings.Builder
	for _, child := range n.Nodes {
		if child.Kind == ElementNode {
			break
		}
		if child.Kind == TextNode {
			sb.WriteString(child.Text)
		}
	}
	return sb.String()
}

// Parse reads a complete XML document into a tree. Any syntax problem,
// including a mismatched or unclosed tag, is reported as *domain.ParseError.
// A leading byte order mark is dropped; a UTF-16 one also converts the input to UTF-8.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(texttransform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder())))
	dec.CharsetReader = charsetReader

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newParseError(dec, err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			node := NewElement(rawName(tok.Name))
			for _, a := range tok.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, newParseError(dec, fmt.Errorf("element <%s> after the document root", node.Name))
				}
				root = node
			} else {
				stack[len(stack)-1].AppendChild(node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			name := rawName(tok.Name)
			if len(stack) == 0 {
				return nil, newParseError(dec, fmt.Errorf("unexpected closing tag </%s>", name))
			}
			if open := stack[len(stack)-1]; open.Name != name {
				return nil, newParseError(dec, fmt.Errorf("element <%s> closed by </%s>", open.Name, name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(tok)) != "" {
					return nil, newParseError(dec, errors.New("character data outside the document root"))
				}
				continue
			}
			stack[len(stack)-1].AppendChild(&Node{Kind: TextNode, Text: string(tok)})

		case xml.Comment:
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(&Node{Kind: CommentNode, Text: string(tok)})
			}
		}
	}

	if len(stack) > 0 {
		return nil, newParseError(dec, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name))
	}
	if root == nil {
		return nil, &domain.ParseError{Err: errors.New("document has no root element")}
	}

	return root, nil
}

// Encode writes the tree rooted at root without an XML declaration.
func Encode(w io.Writer, root *Node, indent string) error {
	enc := xml.NewEncoder(w)
	if indent != "" {
		enc.Indent("", indent)
	}
	if err := encodeNode(enc, root); err != nil {
		return err
	}
	return enc.Flush()
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	switch n.Kind {
	case TextNode:
		return enc.EncodeToken(xml.CharData(n.Text))
	case CommentNode:
		return enc.EncodeToken(xml.Comment(n.Text))
	}

	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("encode <%s>: %w", n.Name, err)
	}
	for _, child := range n.Nodes {
		if err := encodeNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// rawName keeps the namespace prefix as written; RawToken does not resolve it.
func rawName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	// UTF-16 input is only readable behind a BOM, which Parse has already decoded.
	if name, _ := htmlindex.Name(enc); strings.HasPrefix(name, "utf-16") {
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}

func newParseError(dec *xml.Decoder, err error) *domain.ParseError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &domain.ParseError{Line: syntaxErr.Line, Err: err}
	}
	line, _ := dec.InputPos()
	return &domain.ParseError{Line: line, Err: fmt.Errorf("line %d: %w", line, err)}
}
