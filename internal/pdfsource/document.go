// Package pdfsource reads statement PDFs and presents each page as a
// layout tree.
package pdfsource

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// permExtract is the /P permission bit that allows copying text out of an
// encrypted document
const permExtract = 1 << 4

// Options controls page tree construction
type Options struct {
	// TextOnly drops vector and image content before it reaches the tree
	TextOnly bool `json:"text_only" mapstructure:"text_only"`
	// LineNudge is the baseline distance under which characters count as
	// one line
	LineNudge float64 `json:"line_nudge" mapstructure:"line_nudge"`
}

// DefaultOptions returns text-only options with a one unit line nudge
func DefaultOptions() Options {
	return Options{TextOnly: true, LineNudge: 1}
}

// Document is an open statement PDF
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	opts   Options
	logger logger.Logger
}

// Open opens the PDF at path
func Open(path string, opts Options, log logger.Logger) (doc *Document, err error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, statErr)
		}
		if os.IsPermission(statErr) {
			return nil, errors.FileError(errors.CodeFilePermission, path, statErr)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, statErr)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = errors.FileError(errors.CodeFileCorrupted, path, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	file, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, openErr)
	}

	doc = &Document{
		path:   path,
		file:   file,
		reader: reader,
		opts:   opts,
		logger: log.WithComponent("pdfsource").WithField("file", path),
	}
	doc.logger.WithField("pages", reader.NumPage()).Debug("Opened document")
	return doc, nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Extractable reports whether the document permits text extraction.
// Unencrypted documents always do.
func (d *Document) Extractable() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warnf("Could not read permissions: %v", r)
			ok = false
		}
	}()

	encrypt := d.reader.Trailer().Key("Encrypt")
	if encrypt.IsNull() {
		return true
	}
	perms := encrypt.Key("P")
	if perms.IsNull() {
		return true
	}
	return extractAllowed(perms.Int64())
}

// extractAllowed decides text extraction from an encryption dictionary's
// /P value. The value is a signed 32-bit mask, so denials arrive negative.
func extractAllowed(p int64) bool {
	return p&permExtract != 0
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page builds the layout tree for page number i, counting from 1. Missing
// pages yield an empty tree.
func (d *Document) Page(i int) (root layout.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = errors.DocumentError(errors.CodePageUnreadable, d.path, fmt.Errorf("page %d: %v", i, r)).
				WithContext("page", i)
		}
	}()

	page := d.reader.Page(i)
	if page.V.IsNull() {
		d.logger.Debugf("Page %d is empty", i)
		return &layout.Container{}, nil
	}

	content := page.Content()
	var rects []pdf.Rect
	if !d.opts.TextOnly {
		rects = content.Rect
	}
	tree := BuildPage(content.Text, rects, d.opts)

	d.logger.WithFields(logger.Fields{
		"page":       i,
		"characters": len(content.Text),
		"boxes":      len(tree.Children),
	}).Debug("Built page tree")
	return tree, nil
}
