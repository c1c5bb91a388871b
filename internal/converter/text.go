package converter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Text lays out plain text files on A4 pages in a monospaced font.
type Text struct{}

func NewText() *Text { return &Text{} }

func (t *Text) Name() string { return "text" }

func (t *Text) Accepts(format string) bool {
	switch format {
	case "txt", "text", "log", "md":
		return true
	}
	return false
}

func (t *Text) Convert(ctx context.Context, input []byte, _ string, _ string) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFont("Courier", "", 10)
	pdf.AddPage()

	// core fonts are cp1252; runes outside it are replaced
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// lines have no length limit
	r := bufio.NewReader(bytes.NewReader(input))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			pdf.MultiCell(0, 5, tr(strings.ReplaceAll(line, "\t", "    ")), "", "L", false)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
