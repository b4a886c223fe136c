package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/agentx-labs/stackboot/internal/ctxlog"
)

// DefaultFetchTimeout bounds a remote template download.
const DefaultFetchTimeout = 60 * time.Second

// maxTemplateSize caps remote template bodies.
const maxTemplateSize = 4 << 20

// Fetcher reads the raw text of a template source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// SourceFetcher reads local files and downloads http(s) URLs.
type SourceFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// IsRemote reports whether source is fetched over HTTP. Only the scheme
// prefix is inspected.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch implements Fetcher.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return f.fetchRemote(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FetchError{Source: source, Message: "template file not found"}
		}
		return nil, &FetchError{Source: source, Message: "reading template file", Cause: err}
	}
	return data, nil
}

func (f *SourceFetcher) fetchRemote(ctx context.Context, source string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Message: "invalid template URL", Cause: err}
	}
	req.Header.Set("User-Agent", branding.UserAgent())
	req.Header.Set("Accept", "application/yaml, application/json, text/plain, */*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctxlog.FromContext(ctx).Debug("fetching remote template", "url", source, "timeout", timeout)
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{Source: source, Message: fmt.Sprintf("timed out after %s", timeout), Cause: err}
		}
		return nil, &FetchError{Source: source, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: source, StatusCode: resp.StatusCode, Message: "unexpected response"}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize))
	if err != nil {
		return nil, &FetchError{Source: source, Message: "reading response body", Cause: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &FetchError{Source: source, Message: "empty response body"}
	}
	return body, nil
}

// Load fetches and decodes a template. YAML sources are checked against the
// template schema first so structural problems come back with their path.
// The result is not semantically validated; call Validate for that.
func Load(ctx context.Context, source string, fetcher Fetcher) (*Template, error) {
	if fetcher == nil {
		fetcher = &SourceFetcher{}
	}
	data, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(source)
	if format == FormatYAML {
		res, err := ValidateDocument(data)
		if err != nil {
			return nil, &ParseError{Source: source, Cause: err}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
	}
	return Parse(data, format, source)
}
