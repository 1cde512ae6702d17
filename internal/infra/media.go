package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrMediaURLInvalid means the url parameter is missing or unparsable.
	ErrMediaURLInvalid = errors.New("media: url invalida")
	// ErrMediaForbidden means the url is not https or its host is not allowed.
	ErrMediaForbidden = errors.New("media: dominio no permitido")
	// ErrMediaUpstream covers upstream failures, non-image bodies and oversize payloads.
	ErrMediaUpstream = errors.New("media: respuesta invalida del origen")
)

// MediaObject is an image fetched from the upstream CDN.
type MediaObject struct {
	ContentType  string
	CacheControl string
	ETag         string
	Body         []byte
}

// MediaClient fetches images from the allowed CDN hosts through a circuit breaker.
type MediaClient struct {
	allowedHosts []string
	maxBytes     int64
	httpClient   *http.Client
	cb           *CircuitBreaker
}

func NewMediaClient(allowedHosts []string, maxBytes int64, cb *CircuitBreaker) *MediaClient {
	c := &MediaClient{
		allowedHosts: allowedHosts,
		maxBytes:     maxBytes,
		cb:           cb,
	}
	c.httpClient = &http.Client{
		Timeout:       15 * time.Second,
		CheckRedirect: c.checkRedirect,
	}
	return c
}

// checkRedirect follows at most 3 hops, each to an allowed https host.
func (c *MediaClient) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 3 {
		return http.ErrUseLastResponse
	}
	return c.checkURL(req.URL)
}

// Validate parses raw and checks the scheme and host. An allowed host matches
// exactly or as a parent domain (cloudinary.com allows res.cloudinary.com).
func (c *MediaClient) Validate(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMediaURLInvalid
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, ErrMediaURLInvalid
	}
	if err := c.checkURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *MediaClient) checkURL(u *url.URL) error {
	if u.Scheme != "https" || u.User != nil || u.Port() != "" {
		return ErrMediaForbidden
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range c.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return ErrMediaForbidden
}

// Fetch downloads an image. Only image/* bodies up to maxBytes are accepted.
func (c *MediaClient) Fetch(ctx context.Context, u *url.URL) (*MediaObject, error) {
	var obj *MediaObject
	var forbidden error
	err := c.cb.Execute(func() error {
		var ferr error
		obj, ferr = c.fetch(ctx, u)
		if errors.Is(ferr, ErrMediaForbidden) {
			// A refused redirect says nothing about upstream health.
			forbidden = ferr
			return nil
		}
		return ferr
	})
	if forbidden != nil {
		return nil, forbidden
	}
	if errors.Is(err, ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpstream, err)
	}
	return obj, err
}

func (c *MediaClient) fetch(ctx context.Context, u *url.URL) (*MediaObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaURLInvalid, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrMediaForbidden) {
			return nil, fmt.Errorf("%w: redireccion rechazada: %v", ErrMediaForbidden, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMediaUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrMediaUpstream, resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return nil, fmt.Errorf("%w: content-type %q", ErrMediaUpstream, ct)
	}
	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrMediaUpstream, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpstream, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMediaUpstream, c.maxBytes)
	}

	cache := resp.Header.Get("Cache-Control")
	if cache == "" {
		cache = "public, max-age=86400"
	}
	return &MediaObject{
		ContentType:  ct,
		CacheControl: cache,
		ETag:         resp.Header.Get("ETag"),
		Body:         body,
	}, nil
}
