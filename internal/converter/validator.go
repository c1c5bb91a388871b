package converter

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating a config dir under $HOME
	model.ConfigPath = "disable"
}

// Validator checks engine output with pdfcpu.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Inspect validates pdf in relaxed mode and returns its page count.
func (v *Validator) Inspect(pdf []byte) (int, error) {
	if err := api.Validate(bytes.NewReader(pdf), newPDFConfig()); err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(pdf), newPDFConfig())
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return pages, nil
}

// pdfcpu mutates the configuration it is given, so each call gets its own.
func newPDFConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}
