package index

import "image"

// PDFRenderer is the page-rasterization boundary the PDF extraction path
// depends on. No pure-Go PDF rendering library is wired into this module
// (the same reasoning as the local embedding engine's NativeEngine: a real
// renderer is a large native dependency a build links in explicitly), so
// the default reports zero pages and lets a document-type dispatch treat
// the document as empty rather than panic or fabricate a binding.
type PDFRenderer interface {
	// PageCount returns the number of pages in the PDF at path.
	PageCount(path string) (int, error)

	// RenderPage rasterizes the zero-based page index to a bitmap.
	RenderPage(path string, pageIndex int) (image.Image, error)
}

// unavailablePDFRenderer is the default PDFRenderer: no renderer is linked
// in, so every PDF is reported as zero pages.
type unavailablePDFRenderer struct{}

func (unavailablePDFRenderer) PageCount(string) (int, error) { return 0, nil }

func (unavailablePDFRenderer) RenderPage(string, int) (image.Image, error) {
	return nil, errUnavailableRenderer
}

var errUnavailableRenderer = pdfRendererError("no PDF renderer linked into this build")

type pdfRendererError string

func (e pdfRendererError) Error() string { return string(e) }

// DefaultPDFRenderer is used when the builder is constructed without an
// explicit renderer. A deployment that links a real PDF rasterizer supplies
// its own PDFRenderer to New instead.
var DefaultPDFRenderer PDFRenderer = unavailablePDFRenderer{}
