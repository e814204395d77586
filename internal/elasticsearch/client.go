// Package elasticsearch holds the raw REST transport and the document store
// built on top of it. Queries are built elsewhere (esquery); this package
// only moves bytes and checks engine acknowledgements.
package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is a minimal Elasticsearch HTTP client. A failed request is logged
// and yields an empty response rather than an error: callers treat "no data"
// and "transport failure" uniformly and must check for empty responses.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL. skipTLSVerify disables
// TLS cert verification (dev only). username/password enable HTTP Basic auth
// when username is non-empty.
func NewClient(baseURL string, skipTLSVerify bool, username, password string) *Client {
	var transport http.RoundTripper = http.DefaultTransport
	if skipTLSVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}
	if username != "" {
		transport = &basicAuthTransport{base: transport, username: username, password: password}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Transport: transport, Timeout: defaultTimeout},
	}
}

type basicAuthTransport struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	auth := t.username + ":" + t.password
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	return t.base.RoundTrip(req)
}

// Head issues a HEAD request and returns the HTTP status code, -1 on
// transport failure.
func (c *Client) Head(ctx context.Context, path string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url(path), nil)
	if err != nil {
		log.Printf("es: head %s: %v", path, err)
		return -1
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("es: head %s: %v", path, err)
		return -1
	}
	resp.Body.Close()
	return resp.StatusCode
}

// Get issues a GET with a JSON request body. The search endpoint expects the
// query payload on a GET, which is non-standard but what the engine wants.
func (c *Client) Get(ctx context.Context, path string, body []byte) []byte {
	return c.send(ctx, http.MethodGet, path, body)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body []byte) []byte {
	return c.send(ctx, http.MethodPut, path, body)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) []byte {
	return c.send(ctx, http.MethodPost, path, body)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) []byte {
	return c.send(ctx, http.MethodDelete, path, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) []byte {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		log.Printf("es: %s %s: %v", method, path, err)
		return nil
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("es: %s %s: %v", method, path, err)
		return nil
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("es: %s %s: read response: %v", method, path, err)
		return nil
	}
	if resp.StatusCode >= 500 {
		log.Printf("es: %s %s: %s - %s", method, path, resp.Status, string(respBody))
	}
	return respBody
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}
