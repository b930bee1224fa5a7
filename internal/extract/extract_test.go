package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func newTestExtractor() *Extractor {
	// External pdftotext disabled so tests do not depend on the host.
	return New("", 5*time.Second)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_PlainTextPassthrough(t *testing.T) {
	e := newTestExtractor()
	in := "Israel Israeli\nisrael@example.com\n050-1234567"
	got := e.Extract(context.Background(), []byte(in), "cv.txt")
	if got != in {
		t.Fatalf("expected verbatim passthrough, got %q", got)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := newTestExtractor()
	if got := e.Extract(context.Background(), nil, "cv.txt"); got != "" {
		t.Fatalf("expected empty text for empty input, got %q", got)
	}
}

func TestExtract_DocxViaFallbackStrip(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body>` +
		`<w:p><w:r><w:t>Dana Cohen</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>dana@example.com</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, doc)

	e := newTestExtractor()
	got := e.Extract(context.Background(), data, "cv.docx")
	if !strings.Contains(got, "Dana Cohen") {
		t.Fatalf("expected name in extracted text, got %q", got)
	}
	if !strings.Contains(got, "dana@example.com") {
		t.Fatalf("expected email in extracted text, got %q", got)
	}
}

func TestExtract_ZipWithoutWordDocumentIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	e := newTestExtractor()
	if got := e.Extract(context.Background(), buf.Bytes(), "notes.zip"); got != "" {
		t.Fatalf("expected empty text for non-docx zip, got %q", got)
	}
}

func TestExtract_MalformedPDFDegradesToRawScan(t *testing.T) {
	// Not a real PDF body. The text layer fails and the printable-run scan
	// keeps only CV-looking lines.
	data := []byte("%PDF-1.4\n\x01\x02junk line here\nreach me at dana@example.com\n\x03phone 050-1234567\n")
	e := newTestExtractor()
	got := e.Extract(context.Background(), data, "cv.pdf")
	if !strings.Contains(got, "dana@example.com") {
		t.Fatalf("expected email line preserved, got %q", got)
	}
	if !strings.Contains(got, "050-1234567") {
		t.Fatalf("expected mobile line preserved, got %q", got)
	}
	if strings.Contains(got, "junk line here") {
		t.Fatalf("expected non-CV line dropped, got %q", got)
	}
}

func TestExtract_BinaryGarbageIsEmpty(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x03}
	e := newTestExtractor()
	if got := e.Extract(context.Background(), data, "blob.bin"); got != "" {
		t.Fatalf("expected no text from binary garbage, got %q", got)
	}
}

func TestExtract_UnrecognizedBinaryFormatIsEmpty(t *testing.T) {
	// PNG signature: sniffed as an image, not a document.
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 32)...)
	e := newTestExtractor()
	if got := e.Extract(context.Background(), data, "photo.png"); got != "" {
		t.Fatalf("expected no text from image payload, got %q", got)
	}
}

func TestExtract_HebrewPlainTextPassthrough(t *testing.T) {
	e := newTestExtractor()
	in := "דנה לוי\ndana@example.com\n050-1234567"
	if got := e.Extract(context.Background(), []byte(in), "cv.txt"); got != in {
		t.Fatalf("expected verbatim passthrough, got %q", got)
	}
}

func TestScanPrintableRuns_HebrewLineKept(t *testing.T) {
	data := []byte("\x01\x02שלום עולם\nplain ascii only\n")
	got := scanPrintableRuns(data)
	if !strings.Contains(got, "שלום") {
		t.Fatalf("expected Hebrew run preserved, got %q", got)
	}
	if strings.Contains(got, "plain ascii only") {
		t.Fatalf("expected plain ascii line dropped, got %q", got)
	}
}

func TestDecodePlainText_InvalidBytesDropped(t *testing.T) {
	data := append([]byte("abc"), 0xFF)
	data = append(data, []byte("def")...)
	got := decodePlainText(data)
	if got != "abcdef" {
		t.Fatalf("expected invalid byte dropped, got %q", got)
	}
}
