// Package reader opens PDF files and provides access to their objects
// and pages.
//
// The whole file is held in memory: single-lead ECG printouts are a few
// hundred kilobytes at most, and in-memory access lets the scanner jump
// freely between cross-reference offsets.
//
//	r, err := reader.Open("ecg.pdf")
//	if err != nil { ... }
//	defer r.Close()
//
//	page, err := r.GetPage(1) // 0-based
//	content, err := page.ContentData()
//
// The reader resolves indirect references, including objects stored in
// compressed object streams, and caches every object it loads.
package reader
