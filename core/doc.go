// Package core implements the low-level PDF object model and file
// structure parsing needed to reach a page's content stream.
//
// It provides:
//
//   - The PDF object types: Null, Bool, Int, Real, String, Name, Array,
//     Dict, Stream, and IndirectRef
//   - A scanner that parses serialized objects from the raw file bytes
//   - Cross-reference table parsing, both the traditional table form
//     (PDF 1.0-1.4) and the cross-reference stream form (PDF 1.5+),
//     including /Prev chains from incremental updates
//   - Object streams (/Type /ObjStm), which hold compressed objects
//   - Stream filter dispatch to internal/filters
//
// The package is deliberately read-only: the converter never writes PDF.
package core
