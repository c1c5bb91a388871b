package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Remote posts documents to a Gotenberg-compatible conversion service.
// HTML goes to the Chromium route, everything else to the LibreOffice route.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a remote engine. A nil client gets a traced default.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Remote{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Accepts(string) bool { return true }

func (r *Remote) Convert(ctx context.Context, input []byte, format, _ string) ([]byte, error) {
	route, filename := "/forms/libreoffice/convert", "document"
	if format != "" {
		filename += "." + format
	}
	if format == "html" || format == "htm" {
		route, filename = "/forms/chromium/convert/html", "index.html"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(input); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+route, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote converter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote converter bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read remote output: %w", err)
	}
	return out, nil
}
