package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LibreOffice converts documents by running soffice in headless mode.
// Every call uses its own temp dir and user profile so concurrent
// conversions do not share LibreOffice state.
type LibreOffice struct {
	bin string
}

// NewLibreOffice returns an engine running bin ("soffice" when empty).
func NewLibreOffice(bin string) *LibreOffice {
	if bin == "" {
		bin = "soffice"
	}
	return &LibreOffice{bin: bin}
}

func (l *LibreOffice) Name() string { return "libreoffice" }

// Accepts everything; soffice detects the input type itself.
func (l *LibreOffice) Accepts(string) bool { return true }

// Available reports whether the soffice binary can be found.
func (l *LibreOffice) Available() bool {
	_, err := exec.LookPath(l.bin)
	return err == nil
}

func (l *LibreOffice) Convert(ctx context.Context, input []byte, _ string, targetExt string) ([]byte, error) {
	target := strings.TrimPrefix(targetExt, ".")
	if target == "" {
		return nil, fmt.Errorf("target extension is required")
	}

	tmpDir, err := os.MkdirTemp("", "soffice-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "source")
	if err := os.WriteFile(src, input, 0o600); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	profile := (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(tmpDir, "profile"))}).String()
	cmd := exec.CommandContext(ctx, l.bin,
		"-env:UserInstallation="+profile,
		"--headless",
		"--norestore",
		"--convert-to", target,
		"--outdir", tmpDir,
		src,
	)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("soffice: %w", ctxErr)
		}
		return nil, fmt.Errorf("soffice: %w: %s", err, strings.TrimSpace(output.String()))
	}

	out, err := os.ReadFile(filepath.Join(tmpDir, "source."+target))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("soffice produced no output: %s", strings.TrimSpace(output.String()))
		}
		return nil, fmt.Errorf("read output: %w", err)
	}
	return out, nil
}
