// Package gateway is the public edge in front of the checkout service. It
// forwards storefront traffic as-is and gates the staff routes behind the
// admin key.
package gateway

import (
	"context"
	"net/http"
)

type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	url := p.baseURL + path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, r.Body)
	if err != nil {
		return nil, err
	}

	// Member and session identity travel on headers, so forward them all.
	for key, values := range r.Header {
		if key == "Connection" || key == "Keep-Alive" {
			continue
		}
		req.Header[key] = values
	}

	return p.client.Do(req)
}
