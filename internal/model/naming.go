package model

import (
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

const (
	// PDFExt is the target extension of every conversion.
	PDFExt = ".pdf"

	maxNameLen  = 128
	defaultName = "document"
)

// SanitizeName reduces an untrusted client filename to a safe base name.
// Directory components are dropped, anything outside [A-Za-z0-9._-] becomes
// '_', and the result is capped at 128 bytes keeping the extension.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	clean := b.String()
	if strings.Trim(clean, "._") == "" {
		return defaultName
	}

	if len(clean) > maxNameLen {
		ext := filepath.Ext(clean)
		if len(ext) >= maxNameLen {
			ext = ""
		}
		clean = clean[:maxNameLen-len(ext)] + ext
	}
	return clean
}

// NewStoredName returns an opaque, time-ordered id and the stored name
// "<id>-<sanitized name>" for an upload.
func NewStoredName(original string) (id, stored string) {
	id = xid.New().String()
	return id, id + "-" + SanitizeName(original)
}

// ReplaceExt swaps the last extension of name for .pdf.
// Names without a dot, or whose only dot is leading (".env"), get .pdf
// appended. A name that already ends in .pdf becomes "<base>.converted.pdf"
// so the input is never overwritten by its output.
func ReplaceExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name + PDFExt
	}
	base := strings.TrimSuffix(name, ext)
	if strings.EqualFold(ext, PDFExt) {
		return base + ".converted" + PDFExt
	}
	return base + PDFExt
}

// OutputName derives the stored name of the PDF produced from a stored input.
// The id prefix is kept as-is so input and output sort together.
func OutputName(storedName string) string {
	if i := strings.IndexByte(storedName, '-'); i > 0 && i < len(storedName)-1 {
		return storedName[:i+1] + ReplaceExt(storedName[i+1:])
	}
	return ReplaceExt(storedName)
}

// FormatOf returns the lower-case extension of name without the dot.
func FormatOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
