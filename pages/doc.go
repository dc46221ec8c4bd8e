// Package pages navigates the PDF document catalog and page tree.
//
// The catalog is the document root; its /Pages entry leads to a tree of
// Pages nodes whose leaves are the individual Page dictionaries. Pages
// inherit attributes such as /MediaBox and /Resources from ancestor
// nodes, so lookups walk the /Parent chain when the page itself lacks
// the entry.
//
//	catalog := pages.NewCatalog(rootDict, resolver)
//	tree, err := catalog.PageTree()
//	page, err := tree.GetPage(1) // 0-based
//	height := page.Height()
package pages
