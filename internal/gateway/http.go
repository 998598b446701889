package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPGateway sends requests to a real HTTP backend. In the local-first
// deployment the backend is the in-process simulated server, reached over
// loopback; nothing here depends on that.
type HTTPGateway struct {
	base string
	http *http.Client
	// Token, when set, supplies a bearer token per request.
	Token func(ctx context.Context) string
}

func NewHTTPGateway(base string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) Send(ctx context.Context, path string, req Request) (Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, err
		}
		body = bytes.NewReader(buf)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, g.base+path, body)
	if err != nil {
		return Response{}, err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if g.Token != nil {
		if tok := g.Token(ctx); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := g.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, err
	}
	return Response{
		OK:     res.StatusCode >= 200 && res.StatusCode < 300,
		Status: res.StatusCode,
		Data:   parseBody(raw),
	}, nil
}

// parseBody decodes JSON when the content looks like JSON, else passes the
// raw text through.
func parseBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var data any
	if err := json.Unmarshal(trimmed, &data); err == nil {
		return data
	}
	return string(raw)
}
