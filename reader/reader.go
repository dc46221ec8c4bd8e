package reader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/cardiograph/core"
	"github.com/tsawler/cardiograph/pages"
)

// maxResolveDepth bounds recursive resolution so a cyclic object graph
// cannot recurse without limit.
const maxResolveDepth = 100

// PDFVersion represents a PDF version.
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7").
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader provides access to the objects and pages of a PDF file held in
// memory.
type Reader struct {
	data      []byte
	version   PDFVersion
	xrefTable *core.XRefTable
	trailer   core.Dict
	objCache  map[int]core.Object
	objStms   map[int]*core.ObjectStream // parsed object streams by number
	pageTree  *pages.PageTree
}

// Reader satisfies pages.ObjectResolver and core.ReferenceResolver.
var (
	_ pages.ObjectResolver   = (*Reader)(nil)
	_ core.ReferenceResolver = (*Reader)(nil)
)

// Open reads the named file and returns a Reader over it.
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	return NewReader(data)
}

// NewReader creates a Reader over an in-memory PDF file.
func NewReader(data []byte) (*Reader, error) {
	r := &Reader{
		data:     data,
		objCache: make(map[int]core.Object),
		objStms:  make(map[int]*core.ObjectStream),
	}

	version, err := parseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	r.version = version

	offset, err := core.FindStartXRef(data)
	if err != nil {
		return nil, fmt.Errorf("locate cross-reference table: %w", err)
	}
	table, err := core.ParseXRefChain(data, offset)
	if err != nil {
		return nil, fmt.Errorf("load cross-reference table: %w", err)
	}
	r.xrefTable = table
	r.trailer = table.Trailer

	return r, nil
}

// Close releases the reader. Present for symmetry with file-backed
// readers; the byte slice needs no cleanup.
func (r *Reader) Close() error {
	return nil
}

// parseHeader parses the %PDF-x.y header line.
func parseHeader(data []byte) (PDFVersion, error) {
	if len(data) < 8 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		return PDFVersion{}, fmt.Errorf("missing %%PDF header")
	}

	rest := string(data[5:8])
	dot := strings.IndexByte(rest, '.')
	if dot < 1 {
		return PDFVersion{}, fmt.Errorf("malformed version %q", rest)
	}
	major, err1 := strconv.Atoi(rest[:dot])
	minor, err2 := strconv.Atoi(rest[dot+1 : dot+2])
	if err1 != nil || err2 != nil {
		return PDFVersion{}, fmt.Errorf("malformed version %q", rest)
	}
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the PDF version from the header.
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary.
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// XRefTable exposes the merged cross-reference table.
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// FileSize returns the size of the PDF file in bytes.
func (r *Reader) FileSize() int64 {
	return int64(len(r.data))
}

// CacheSize returns the number of cached objects.
func (r *Reader) CacheSize() int {
	return len(r.objCache)
}

// GetObject loads the object with the given number, from its file offset
// or from its containing object stream. Loaded objects are cached.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}

	entry, ok := r.xrefTable.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not in cross-reference table", objNum)
	}
	if !entry.InUse {
		return nil, fmt.Errorf("object %d is free", objNum)
	}

	var obj core.Object
	var err error
	if entry.InStream {
		obj, err = r.getCompressedObject(objNum, entry)
	} else {
		obj, err = r.getRegularObject(objNum, entry)
	}
	if err != nil {
		return nil, err
	}

	r.objCache[objNum] = obj
	return obj, nil
}

// getRegularObject scans an object at its byte offset in the file.
func (r *Reader) getRegularObject(objNum int, entry *core.XRefEntry) (core.Object, error) {
	s := core.NewScanner(r.data)
	s.SetResolver(r)
	if err := s.SeekTo(entry.Offset); err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}

	ind, err := s.ScanIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: want %d, found %d", objNum, ind.Ref.Number)
	}
	return ind.Object, nil
}

// getCompressedObject loads an object stored inside an object stream.
func (r *Reader) getCompressedObject(objNum int, entry *core.XRefEntry) (core.Object, error) {
	objStm, err := r.getObjectStream(entry.StreamNum)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}

	obj, err := objStm.GetByIndex(entry.StreamIdx)
	if err != nil {
		// Fall back to a lookup by number; some writers record stale
		// indices after incremental updates.
		obj, err = objStm.GetByNumber(objNum)
	}
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", objNum, entry.StreamNum, err)
	}
	return obj, nil
}

// getObjectStream loads and caches the object stream with the given
// object number.
func (r *Reader) getObjectStream(streamNum int) (*core.ObjectStream, error) {
	if objStm, ok := r.objStms[streamNum]; ok {
		return objStm, nil
	}

	obj, err := r.GetObject(streamNum)
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is %T, want object stream", streamNum, obj)
	}

	objStm, err := core.ParseObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", streamNum, err)
	}
	r.objStms[streamNum] = objStm
	return objStm, nil
}

// ResolveReference resolves a single indirect reference.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve resolves obj if it is an indirect reference, otherwise returns
// it unchanged.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// ResolveDeep recursively resolves every indirect reference inside obj.
// Cycles in the object graph resolve to Null rather than recursing.
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolveDeep(obj, make(map[int]bool), 0)
}

func (r *Reader) resolveDeep(obj core.Object, visited map[int]bool, depth int) (core.Object, error) {
	if depth > maxResolveDepth {
		return nil, fmt.Errorf("object graph deeper than %d levels", maxResolveDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if visited[v.Number] {
			return core.Null{}, nil
		}
		visited[v.Number] = true
		defer delete(visited, v.Number)

		resolved, err := r.ResolveReference(v)
		if err != nil {
			return nil, err
		}
		return r.resolveDeep(resolved, visited, depth+1)

	case core.Array:
		result := make(core.Array, len(v))
		for i, elem := range v {
			resolved, err := r.resolveDeep(elem, visited, depth+1)
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	case core.Dict:
		result := make(core.Dict, len(v))
		for key, val := range v {
			resolved, err := r.resolveDeep(val, visited, depth+1)
			if err != nil {
				return nil, fmt.Errorf("resolve /%s: %w", key, err)
			}
			result[key] = resolved
		}
		return result, nil
	}
	return obj, nil
}

// GetCatalog returns the document catalog dictionary.
func (r *Reader) GetCatalog() (core.Dict, error) {
	rootObj := r.trailer.Get("Root")
	if rootObj == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	resolved, err := r.Resolve(rootObj)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	catalog, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is %T, want dictionary", resolved)
	}
	return catalog, nil
}

// GetInfo returns the document information dictionary, or nil when the
// file has none.
func (r *Reader) GetInfo() (core.Dict, error) {
	infoObj := r.trailer.Get("Info")
	if infoObj == nil {
		return nil, nil
	}
	resolved, err := r.Resolve(infoObj)
	if err != nil {
		return nil, fmt.Errorf("resolve info: %w", err)
	}
	info, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("info is %T, want dictionary", resolved)
	}
	return info, nil
}

// PageCount returns the number of pages in the document.
func (r *Reader) PageCount() (int, error) {
	tree, err := r.getPageTree()
	if err != nil {
		return 0, err
	}
	return tree.Count()
}

// GetPage returns the page at the given 0-based index.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	tree, err := r.getPageTree()
	if err != nil {
		return nil, err
	}
	return tree.GetPage(index)
}

func (r *Reader) getPageTree() (*pages.PageTree, error) {
	if r.pageTree != nil {
		return r.pageTree, nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.NewCatalog(catalog, r).PageTree()
	if err != nil {
		return nil, err
	}
	r.pageTree = tree
	return tree, nil
}
