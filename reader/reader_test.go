package reader

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/tsawler/cardiograph/core"
)

// pdfBuilder assembles a synthetic PDF, tracking object offsets so the
// cross-reference table can be emitted last.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func newPDFBuilder(version string) *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int)}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n", version)
	return b
}

func (b *pdfBuilder) addObject(num int, body string) {
	b.offsets[num] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (b *pdfBuilder) addStream(num int, dict string, data []byte) {
	b.offsets[num] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nstream\n", num, dict)
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
}

// finishClassic writes a traditional cross-reference table covering
// objects 0..maxObj and the trailer.
func (b *pdfBuilder) finishClassic(maxObj int, trailer string) []byte {
	xrefOff := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxObj+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	fmt.Fprintf(&b.buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xrefOff)
	return b.buf.Bytes()
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// twoPagePDF builds a two-page document with one plain and one
// flate-compressed content stream.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	b := newPDFBuilder("1.4")
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Count 2 /Kids [3 0 R 4 0 R] /MediaBox [0 0 612 792] >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Contents 5 0 R >>")
	b.addObject(4, "<< /Type /Page /Parent 2 0 R /Contents 6 0 R >>")

	plain := []byte("0.4 w 0 0 0 RG")
	b.addStream(5, fmt.Sprintf("<< /Length %d >>", len(plain)), plain)

	deflated := compress(t, []byte("100 700 m 200 700 l S"))
	b.addStream(6, fmt.Sprintf("<< /Length %d /Filter /FlateDecode >>", len(deflated)), deflated)

	return b.finishClassic(6, "<< /Size 7 /Root 1 0 R >>")
}

func TestOpenTwoPagePDF(t *testing.T) {
	r, err := NewReader(twoPagePDF(t))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if v := r.Version(); v.Major != 1 || v.Minor != 4 {
		t.Errorf("version = %s, want 1.4", v)
	}
	n, err := r.PageCount()
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("PageCount = %d, want 2", n)
	}
}

func TestGetCatalog(t *testing.T) {
	r, err := NewReader(twoPagePDF(t))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog failed: %v", err)
	}
	if name, _ := catalog.GetName("Type"); name != "Catalog" {
		t.Errorf("catalog /Type = %q", name)
	}
}

func TestPageContentPlain(t *testing.T) {
	r, _ := NewReader(twoPagePDF(t))
	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0) failed: %v", err)
	}

	data, err := page.ContentData()
	if err != nil {
		t.Fatalf("ContentData failed: %v", err)
	}
	if string(data) != "0.4 w 0 0 0 RG" {
		t.Errorf("content = %q", data)
	}
	if h := page.Height(); h != 792 {
		t.Errorf("Height = %v, want 792 inherited from page tree root", h)
	}
}

func TestPageContentFlate(t *testing.T) {
	r, _ := NewReader(twoPagePDF(t))
	page, err := r.GetPage(1)
	if err != nil {
		t.Fatalf("GetPage(1) failed: %v", err)
	}
	data, err := page.ContentData()
	if err != nil {
		t.Fatalf("ContentData failed: %v", err)
	}
	if string(data) != "100 700 m 200 700 l S" {
		t.Errorf("content = %q", data)
	}
}

func TestObjectCaching(t *testing.T) {
	r, _ := NewReader(twoPagePDF(t))
	if _, err := r.GetObject(2); err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	first := r.CacheSize()
	if _, err := r.GetObject(2); err != nil {
		t.Fatalf("repeated GetObject failed: %v", err)
	}
	if r.CacheSize() != first {
		t.Errorf("cache grew on repeated load: %d -> %d", first, r.CacheSize())
	}
}

func TestGetObjectMissing(t *testing.T) {
	r, _ := NewReader(twoPagePDF(t))
	if _, err := r.GetObject(99); err == nil {
		t.Error("expected error for unknown object number")
	}
}

func TestResolveDeep(t *testing.T) {
	r, _ := NewReader(twoPagePDF(t))
	catalog, _ := r.GetCatalog()

	resolved, err := r.ResolveDeep(catalog.Get("Pages"))
	if err != nil {
		t.Fatalf("ResolveDeep failed: %v", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		t.Fatalf("resolved to %T, want Dict", resolved)
	}
	kids, _ := dict.GetArray("Kids")
	if len(kids) != 2 {
		t.Fatalf("kids = %v", kids)
	}
	// Kids hold the pages themselves after deep resolution, and their
	// back-pointing /Parent cycles must not recurse forever.
	kid, ok := kids[0].(core.Dict)
	if !ok {
		t.Fatalf("kid resolved to %T, want Dict", kids[0])
	}
	if name, _ := kid.GetName("Type"); name != "Page" {
		t.Errorf("kid /Type = %q", name)
	}
}

func TestInvalidHeader(t *testing.T) {
	if _, err := NewReader([]byte("not a pdf at all")); err == nil {
		t.Error("expected error for missing %PDF header")
	}
}

func TestMissingStartXRef(t *testing.T) {
	if _, err := NewReader([]byte("%PDF-1.4\nno trailer here")); err == nil {
		t.Error("expected error for missing startxref")
	}
}

// compressedObjectPDF builds a PDF 1.5 file whose catalog, page tree,
// and page live inside an object stream, indexed by a cross-reference
// stream.
func compressedObjectPDF(t *testing.T) []byte {
	t.Helper()
	b := newPDFBuilder("1.5")

	content := []byte("70.878 655.909 m 541.187 655.909 l S")
	b.addStream(6, fmt.Sprintf("<< /Length %d >>", len(content)), content)

	// Objects 1-3 packed into object stream 4.
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Count 1 /Kids [3 0 R] >>",
		"<< /Type /Page /Parent 2 0 R /Contents 6 0 R /MediaBox [0 0 612 792] >>",
	}
	var header, body bytes.Buffer
	for i, obj := range objects {
		fmt.Fprintf(&header, "%d %d ", i+1, body.Len())
		body.WriteString(obj)
		body.WriteString("\n")
	}
	stmData := append(header.Bytes(), body.Bytes()...)
	b.addStream(4, fmt.Sprintf("<< /Type /ObjStm /N 3 /First %d /Length %d >>",
		header.Len(), len(stmData)), stmData)

	// Cross-reference stream with /W [1 2 1].
	xrefOff := b.buf.Len()
	var entries bytes.Buffer
	write := func(f1 byte, f2 int, f3 byte) {
		entries.Write([]byte{f1, byte(f2 >> 8), byte(f2), f3})
	}
	write(0, 0, 0)              // 0: free
	write(2, 4, 0)              // 1: in stream 4, index 0
	write(2, 4, 1)              // 2: in stream 4, index 1
	write(2, 4, 2)              // 3: in stream 4, index 2
	write(1, b.offsets[4], 0)   // 4: object stream
	write(1, xrefOff, 0)        // 5: this cross-reference stream
	write(1, b.offsets[6], 0)   // 6: content stream

	b.addStream(5, fmt.Sprintf(
		"<< /Type /XRef /Size 7 /W [1 2 1] /Root 1 0 R /Length %d >>",
		entries.Len()), entries.Bytes())

	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefOff)
	return b.buf.Bytes()
}

func TestCompressedObjects(t *testing.T) {
	r, err := NewReader(compressedObjectPDF(t))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	n, err := r.PageCount()
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("PageCount = %d, want 1", n)
	}

	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	data, err := page.ContentData()
	if err != nil {
		t.Fatalf("ContentData failed: %v", err)
	}
	if string(data) != "70.878 655.909 m 541.187 655.909 l S" {
		t.Errorf("content = %q", data)
	}
}
