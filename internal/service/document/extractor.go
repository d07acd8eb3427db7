// Package document extracts plain text from uploaded files and holds the
// document context used when composing prompts.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// MaxUploadSize bounds an uploaded document.
const MaxUploadSize = 32 << 20

var (
	// ErrUnsupportedType is reported for files that are neither PDF nor text
	// when no Tika server is configured.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrEmptyDocument is reported for zero-length uploads.
	ErrEmptyDocument = errors.New("document is empty")
)

// Extraction is the outcome of Extract. On failure Text is empty and Err is set.
type Extraction struct {
	Name  string
	MIME  string
	Pages int
	Text  string
	Err   error
}

// Extractor turns raw uploads into text.
type Extractor struct {
	tika *TikaClient
}

// NewExtractor returns an extractor. tika may be nil.
func NewExtractor(tika *TikaClient) *Extractor {
	return &Extractor{tika: tika}
}

// Extract never panics; parser failures are reported through Extraction.Err.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) Extraction {
	result := Extraction{Name: name}
	if len(data) == 0 {
		result.Err = ErrEmptyDocument
		return result
	}

	mtype := mimetype.Detect(data)
	result.MIME = mtype.String()

	var (
		text  string
		pages int
		err   error
	)
	switch {
	case mtype.Is("application/pdf"):
		text, pages, err = extractPDF(data)
	case isText(mtype):
		text, err = extractText(data)
	case e.tika != nil:
		text, err = e.tika.ExtractText(ctx, bytes.NewReader(data), mtype.String())
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err != nil {
		log.Warnf("[document] extract %q (%s) failed: %v", name, result.MIME, err)
		result.Err = err
		return result
	}

	result.Text = strings.TrimSpace(text)
	result.Pages = pages
	log.Infof("[document] extracted %q (%s): pages=%d chars=%d", name, result.MIME, pages, len(result.Text))
	return result
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text document is not valid UTF-8")
	}
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
}

// extractPDF appends every page's text followed by a newline. Pages without
// extractable text contribute only the newline.
func extractPDF(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			builder.WriteString("\n")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("read page %d: %w", i, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), pages, nil
}
