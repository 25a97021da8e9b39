package mcp

import "net/http"

// buildHTTPClient returns an HTTP client that adds the endpoint headers and
// the bearer credential to every request. Returns nil if neither is
// configured, letting the SDK use its default client.
func buildHTTPClient(ep Endpoint, token string) *http.Client {
	if len(ep.Headers) == 0 && token == "" {
		return nil
	}

	headers := make(map[string]string, len(ep.Headers)+1)
	for k, v := range ep.Headers {
		headers[k] = v
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: headers,
		},
	}
}

// headerTransport is an http.RoundTripper that adds custom headers to
// every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
