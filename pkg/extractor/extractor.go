package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/ne3naika-ctrl/codex/internal/models"
)

// ErrUnsupportedType is returned for file extensions no extractor handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// FromFile picks an extractor by file extension and returns the extracted
// text together with the source type it will be stored under. The text may
// be empty; deciding what to do with empty content is the caller's job.
func FromFile(filename string, raw []byte) (string, models.SourceType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return sanitizeUTF8(string(raw)), models.SourceTypeMarkdown, nil
	case ".pdf":
		text, err := parsePDF(raw)
		if err != nil {
			return "", models.SourceTypePDF, err
		}
		return text, models.SourceTypePDF, nil
	case ".txt":
		return sanitizeUTF8(string(raw)), models.SourceTypeText, nil
	case ".html", ".htm":
		text, err := parseHTML(raw)
		if err != nil {
			return "", models.SourceTypeText, err
		}
		return text, models.SourceTypeText, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

// parsePDF extracts text page by page and joins the pages with newlines.
// A page that yields no text contributes an empty string.
func parsePDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %v", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// parseHTML strips markup and returns the document's visible text.
func parseHTML(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %v", err)
	}

	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

// sanitizeUTF8 drops invalid byte sequences instead of failing on them.
func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
