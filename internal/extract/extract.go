package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"

	"github.com/ayalaw/clickjob/internal/shared/metrics"
	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Extractor converts uploaded CV files to plain text. Classification is by
// sniffed file signature, never by the declared MIME type. Every failure
// degrades to empty text: an unreadable CV must not block saving a candidate.
type Extractor struct {
	// PdfToTextPath is the external pdftotext binary used when the pure-Go
	// PDF reader fails. Empty disables the external fallback.
	PdfToTextPath string
	// Timeout bounds a single external tool invocation.
	Timeout time.Duration
}

// New constructs an Extractor.
func New(pdfToTextPath string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Extractor{PdfToTextPath: pdfToTextPath, Timeout: timeout}
}

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Extract returns the plain text of a CV payload, or "" when nothing can be
// extracted. It never returns an error.
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName string) string {
	metrics.IncExtractStarted()
	start := time.Now()
	text := e.extract(ctx, data, fileName)
	metrics.ObserveExtractDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if text == "" {
		metrics.IncExtractEmpty()
	}
	return text
}

func (e *Extractor) extract(ctx context.Context, data []byte, fileName string) string {
	if len(data) == 0 || ctx.Err() != nil {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return e.extractPDF(ctx, data, fileName)
	case bytes.HasPrefix(data, zipMagic):
		return extractOfficeXML(data, fileName)
	case bytes.HasPrefix(data, oleMagic):
		return extractLegacyDoc(data, fileName)
	default:
		mtype := mimetype.Detect(data)
		if isTextLike(mtype) {
			return decodePlainText(data)
		}
		telemetry.Info("extract.unsupported_payload", map[string]any{
			"file_name": fileName,
			"mime":      mtype.String(),
		})
		return ""
	}
}

// isTextLike walks the detected type's ancestry looking for text/plain, so
// plain text and its derived types (html, csv, rtf) all reach the lossy
// decoder while binary payloads yield empty text.
func isTextLike(mtype *mimetype.MIME) bool {
	for t := mtype; t != nil; t = t.Parent() {
		if t.Is("text/plain") {
			return true
		}
	}
	return false
}

// extractOfficeXML handles OOXML containers. docconv does the heavy lifting;
// a zip+xml strip of word/document.xml is the fallback.
func extractOfficeXML(data []byte, fileName string) string {
	if !hasWordDocument(data) {
		// Not a Word container. Non-document zips carry no CV text.
		telemetry.Info("extract.zip_not_docx", map[string]any{
			"file_name": fileName,
			"mime":      mimetype.Detect(data).String(),
		})
		return ""
	}

	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		telemetry.Error("extract.docx_convert_failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
	}

	fallback, err := stripWordDocumentXML(data)
	if err != nil {
		telemetry.Error("extract.docx_fallback_failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return ""
	}
	return fallback
}

func extractLegacyDoc(data []byte, fileName string) string {
	text, _, err := docconv.ConvertDoc(bytes.NewReader(data))
	if err != nil {
		telemetry.Error("extract.doc_convert_failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return ""
	}
	return text
}

func hasWordDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

func stripWordDocumentXML(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errNoWordDocument
	}
	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripXMLCharData(string(raw)), nil
}

// stripXMLCharData concatenates character data, inserting newlines at
// paragraph and line-break boundaries.
func stripXMLCharData(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// decodePlainText treats the payload as UTF-8, dropping invalid bytes.
func decodePlainText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var buf strings.Builder
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError || size > 1 {
			buf.WriteRune(r)
		}
		data = data[size:]
	}
	return buf.String()
}
