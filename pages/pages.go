package pages

import (
	"fmt"

	"github.com/tsawler/cardiograph/core"
)

// DefaultPageHeight is the US Letter height in points, assumed when a
// page carries no resolvable /MediaBox.
const DefaultPageHeight = 792.0

// maxParentDepth bounds the /Parent walk for inherited attributes, so a
// cyclic page tree cannot hang the lookup.
const maxParentDepth = 10

// ObjectResolver resolves indirect references to their objects.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// Catalog represents the PDF document catalog, the root of the document
// structure.
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a catalog from the trailer's /Root dictionary.
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// PageTree returns the page tree rooted at the catalog's /Pages entry.
func (c *Catalog) PageTree() (*PageTree, error) {
	obj := c.dict.Get("Pages")
	if obj == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Pages: %w", err)
	}
	root, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Pages is %T, want dictionary", resolved)
	}
	return NewPageTree(root, c.resolver), nil
}

// PageTree represents the page tree and hands out its leaf pages.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page // flattened leaf list, built on first access
}

// NewPageTree creates a page tree from the root Pages dictionary.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the page count recorded on the tree root.
func (t *PageTree) Count() (int, error) {
	n, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}
	return int(n), nil
}

// GetPage returns the page at the given 0-based index in document order.
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all leaf pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		if err := t.walk(t.root, 0); err != nil {
			return nil, err
		}
	}
	return t.pages, nil
}

// walk flattens the tree depth-first. Intermediate nodes list children in
// /Kids; leaves have /Type /Page.
func (t *PageTree) walk(node core.Dict, depth int) error {
	if depth > maxParentDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxParentDepth)
	}

	typeName, _ := node.GetName("Type")
	switch typeName {
	case "Pages":
		kidsObj, err := t.resolver.Resolve(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("resolve /Kids: %w", err)
		}
		kids, ok := kidsObj.(core.Array)
		if !ok {
			return fmt.Errorf("/Kids is %T, want array", kidsObj)
		}
		for i, kid := range kids {
			resolved, err := t.resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("resolve kid %d: %w", i, err)
			}
			dict, ok := resolved.(core.Dict)
			if !ok {
				return fmt.Errorf("kid %d is %T, want dictionary", i, resolved)
			}
			if err := t.walk(dict, depth+1); err != nil {
				return err
			}
		}
		return nil
	case "Page":
		t.pages = append(t.pages, NewPage(node, t.resolver))
		return nil
	}
	return fmt.Errorf("unexpected page tree node type %q", typeName)
}

// Page represents a single page of the document.
type Page struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewPage creates a page from its dictionary.
func NewPage(dict core.Dict, resolver ObjectResolver) *Page {
	return &Page{dict: dict, resolver: resolver}
}

// Dict exposes the underlying page dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// inherited looks up an attribute on the page, walking the /Parent chain
// when absent. The walk is depth-bounded; a missing or cyclic chain
// yields nil.
func (p *Page) inherited(key string) core.Object {
	node := p.dict
	for depth := 0; depth <= maxParentDepth; depth++ {
		if obj := node.Get(key); obj != nil {
			resolved, err := p.resolver.Resolve(obj)
			if err != nil {
				return nil
			}
			return resolved
		}
		parentObj := node.Get("Parent")
		if parentObj == nil {
			return nil
		}
		resolved, err := p.resolver.Resolve(parentObj)
		if err != nil {
			return nil
		}
		parent, ok := resolved.(core.Dict)
		if !ok {
			return nil
		}
		node = parent
	}
	return nil
}

// MediaBox returns the page boundary [x1 y1 x2 y2], inherited from
// ancestor nodes when the page lacks its own.
func (p *Page) MediaBox() ([4]float64, bool) {
	arr, ok := p.inherited("MediaBox").(core.Array)
	if !ok || len(arr) != 4 {
		return [4]float64{}, false
	}
	var box [4]float64
	for i, elem := range arr {
		resolved, err := p.resolver.Resolve(elem)
		if err != nil {
			return [4]float64{}, false
		}
		v, ok := core.Float(resolved)
		if !ok {
			return [4]float64{}, false
		}
		box[i] = v
	}
	return box, true
}

// Height returns the /MediaBox top coordinate in points, the value the
// interpreter flips y against. For the usual zero-origin media box this
// is the page height. Pages without a resolvable /MediaBox get the US
// Letter default.
func (p *Page) Height() float64 {
	box, ok := p.MediaBox()
	if !ok {
		return DefaultPageHeight
	}
	return box[3]
}

// Width returns the page width in points, or 0 when no /MediaBox is
// resolvable.
func (p *Page) Width() float64 {
	box, ok := p.MediaBox()
	if !ok {
		return 0
	}
	return box[2] - box[0]
}

// Resources returns the page's resource dictionary, inherited when
// absent on the page itself.
func (p *Page) Resources() (core.Dict, bool) {
	dict, ok := p.inherited("Resources").(core.Dict)
	return dict, ok
}

// Rotate returns the page rotation in degrees (0, 90, 180, or 270),
// inherited when absent.
func (p *Page) Rotate() int {
	if n, ok := p.inherited("Rotate").(core.Int); ok {
		return int(n)
	}
	return 0
}

// Contents returns the page's content streams in order. A page may carry
// a single stream or an array of streams that concatenate into one
// logical content stream.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj := p.dict.Get("Contents")
	if obj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Contents: %w", err)
	}

	switch v := resolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			r, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("resolve contents[%d]: %w", i, err)
			}
			stream, ok := r.(*core.Stream)
			if !ok {
				return nil, fmt.Errorf("contents[%d] is %T, want stream", i, r)
			}
			streams = append(streams, stream)
		}
		return streams, nil
	}
	return nil, fmt.Errorf("/Contents is %T, want stream or array", resolved)
}

// ContentData decodes and concatenates the page's content streams,
// joined with a newline so tokens cannot run together across stream
// boundaries.
func (p *Page) ContentData() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}

	var data []byte
	for i, stream := range streams {
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream %d: %w", i, err)
		}
		if i > 0 {
			data = append(data, '\n')
		}
		data = append(data, decoded...)
	}
	return data, nil
}
