package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

var errNoWordDocument = errors.New("document.xml file not found")

// extractPDF tries the text layer first, then the external pdftotext tool,
// and finally a lossy printable-run scan of the raw bytes.
func (e *Extractor) extractPDF(ctx context.Context, data []byte, fileName string) string {
	text, err := pdfTextLayer(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		telemetry.Info("extract.pdf_text_layer_failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
	}

	if e.PdfToTextPath != "" {
		text, err = e.pdfToText(ctx, data)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			telemetry.Error("extract.pdftotext_failed", map[string]any{
				"file_name": fileName,
				"error":     err.Error(),
			})
		}
	}

	return scanPrintableRuns(data)
}

func pdfTextLayer(data []byte) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New("pdf reader panic")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// pdfToText shells out to the external tool against a temp file. The file is
// removed on every path and the invocation is bounded by the Extractor timeout.
func (e *Extractor) pdfToText(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "cv-*.pdf")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, e.PdfToTextPath, "-enc", "UTF-8", tmpPath, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		if execCtx.Err() != nil {
			return "", execCtx.Err()
		}
		return "", err
	}
	return out.String(), nil
}

var (
	hebrewRunRe = regexp.MustCompile(`[\x{05D0}-\x{05EA}]{2,}`)
	mobileRunRe = regexp.MustCompile(`05\d[-\s]?\d{7}`)
)

// scanPrintableRuns recovers printable text from a raw byte stream. It is
// lossy and only expected to work for plain-text-like PDFs; lines are kept
// only when they look like CV content (a Hebrew run, an @, or a mobile-like
// digit run).
func scanPrintableRuns(data []byte) string {
	var runs []string
	var current bytes.Buffer
	flush := func() {
		if current.Len() >= 4 {
			runs = append(runs, current.String())
		}
		current.Reset()
	}

	for len(data) > 0 {
		b := data[0]
		switch {
		case b >= 0x20 && b < 0x7F:
			current.WriteByte(b)
			data = data[1:]
		case b == '\n' || b == '\r' || b == '\t':
			flush()
			runs = append(runs, "\n")
			data = data[1:]
		case b >= 0xC0:
			// Possible multi-byte UTF-8 sequence (Hebrew text shows up
			// this way in uncompressed streams).
			r, size := utf8.DecodeRune(data)
			if r != utf8.RuneError {
				current.WriteRune(r)
				data = data[size:]
				continue
			}
			flush()
			data = data[1:]
		default:
			flush()
			data = data[1:]
		}
	}
	flush()

	joined := strings.Join(runs, " ")
	var kept []string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hebrewRunRe.MatchString(line) || strings.Contains(line, "@") || mobileRunRe.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
