package markdown

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/yuin/goldmark"
)

// Renderer converts Markdown source to HTML.
type Renderer interface {
	ToHTML(ctx context.Context, source string) (string, error)
}

// Converter prefers a remote conversion service and falls back to a local
// renderer on any failure of the remote call: network error, non-2xx status
// or timeout. No retry.
type Converter struct {
	log      *slog.Logger
	client   *http.Client
	endpoint string
	local    goldmark.Markdown
}

func NewConverter(log *slog.Logger, endpoint string, timeout time.Duration) *Converter {
	return &Converter{
		log:      log,
		endpoint: endpoint,
		// The timeout bounds the whole remote call so one slow upstream
		// cannot hold a pooled worker indefinitely.
		client: &http.Client{Timeout: timeout},
		local:  goldmark.New(),
	}
}

func (c *Converter) ToHTML(ctx context.Context, source string) (string, error) {
	html, err := c.convertRemote(ctx, source)
	if err != nil {
		c.log.Warn("remote markdown conversion failed, using local renderer", "error", err.Error())
		return c.convertLocal(source)
	}

	return html, nil
}

func (c *Converter) convertRemote(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(source))
	if err != nil {
		return "", xerrors.New(err)
	}
	req.Header.Set("Content-Type", "text/x-markdown")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", xerrors.New(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", xerrors.Newf("remote markdown service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", xerrors.New(err)
	}

	return string(body), nil
}

func (c *Converter) convertLocal(source string) (string, error) {
	var buf bytes.Buffer
	if err := c.local.Convert([]byte(source), &buf); err != nil {
		return "", xerrors.New(err)
	}

	return buf.String(), nil
}
