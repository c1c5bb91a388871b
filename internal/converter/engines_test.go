package converter

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestText_ProducesValidPDF(t *testing.T) {
	out, err := NewText().Convert(context.Background(), []byte("hello\tworld\r\nsecond line, café\n"), "txt", ".pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	pages, err := NewValidator().Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestText_LongInputSpansPages(t *testing.T) {
	input := strings.Repeat("a line of text\n", 200)
	out, err := NewText().Convert(context.Background(), []byte(input), "txt", ".pdf")
	require.NoError(t, err)

	pages, err := NewValidator().Inspect(out)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestText_RejectsEmptyInput(t *testing.T) {
	_, err := NewText().Convert(context.Background(), nil, "txt", ".pdf")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestText_LineLongerThanOneMebibyte(t *testing.T) {
	input := strings.Repeat("x", 1<<20+16) + "\nshort tail"
	out, err := NewText().Convert(context.Background(), []byte(input), "txt", ".pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestImage_ProducesValidPDF(t *testing.T) {
	out, err := NewImage().Convert(context.Background(), pngBytes(t, 64, 32), "png", ".pdf")
	require.NoError(t, err)

	pages, err := NewValidator().Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestImage_RejectsNonImage(t *testing.T) {
	_, err := NewImage().Convert(context.Background(), []byte("definitely not a png"), "png", ".pdf")
	assert.Error(t, err)
}

func TestValidator_RejectsGarbage(t *testing.T) {
	_, err := NewValidator().Inspect([]byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestRemote_RoutesByFormat(t *testing.T) {
	var gotPath, gotFile, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		fh := r.MultipartForm.File["files"][0]
		gotFile = fh.Filename
		f, err := fh.Open()
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(f)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-remote"))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/", srv.Client())

	out, err := r.Convert(context.Background(), []byte("docx-bytes"), "docx", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-remote", string(out))
	assert.Equal(t, "/forms/libreoffice/convert", gotPath)
	assert.Equal(t, "document.docx", gotFile)
	assert.Equal(t, "docx-bytes", gotBody)

	_, err = r.Convert(context.Background(), []byte("<p>hi</p>"), "html", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "/forms/chromium/convert/html", gotPath)
	assert.Equal(t, "index.html", gotFile)
}

func TestRemote_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, nil).Convert(context.Background(), []byte("x"), "xyz", ".pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "unsupported")
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stub needs a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func TestLibreOffice_RunsBinaryAndReadsOutput(t *testing.T) {
	bin := writeScript(t, `out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) out="$2"; shift ;;
    *) src="$1" ;;
  esac
  shift
done
{ printf '%%PDF-'; cat "$src"; } > "$out/source.pdf"
`)
	out, err := NewLibreOffice(bin).Convert(context.Background(), []byte("doc"), "docx", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-doc", string(out))
}

func TestLibreOffice_FailureCarriesStderr(t *testing.T) {
	bin := writeScript(t, "echo 'source file could not be loaded' >&2\nexit 1\n")
	_, err := NewLibreOffice(bin).Convert(context.Background(), []byte("doc"), "docx", ".pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be loaded")
}

func TestLibreOffice_NoOutputFile(t *testing.T) {
	bin := writeScript(t, "exit 0\n")
	_, err := NewLibreOffice(bin).Convert(context.Background(), []byte("doc"), "docx", ".pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}

func TestLibreOffice_MissingBinary(t *testing.T) {
	lo := NewLibreOffice(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.False(t, lo.Available())
	_, err := lo.Convert(context.Background(), []byte("doc"), "docx", ".pdf")
	assert.Error(t, err)
}

func TestChrome_Accepts(t *testing.T) {
	c := NewChrome(ChromeOptions{})
	assert.True(t, c.Accepts("html"))
	assert.True(t, c.Accepts("htm"))
	assert.False(t, c.Accepts("docx"))
	assert.Equal(t, 8.27, c.opts.PaperWidth)
}

func TestChrome_AllowedURL(t *testing.T) {
	assert.True(t, allowedURL("data:image/png;base64,AAAA"))
	assert.True(t, allowedURL("about:blank"))
	assert.False(t, allowedURL("http://169.254.169.254/latest/meta-data/"))
	assert.False(t, allowedURL("file:///etc/passwd"))
	assert.False(t, allowedURL("https://example.com/logo.png"))
}

func chromeBinary(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no chrome binary on PATH")
	return ""
}

func TestChrome_BlocksSubresourceFetches(t *testing.T) {
	bin := chromeBinary(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	html := `<html><body><p>invoice</p><img src="` + srv.URL + `/pixel.png">` +
		`<link rel="stylesheet" href="` + srv.URL + `/style.css"></body></html>`

	c := NewChrome(ChromeOptions{ExecPath: bin, NoSandbox: true})
	out, err := c.Convert(context.Background(), []byte(html), "html", ".pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Zero(t, hits.Load())
}
