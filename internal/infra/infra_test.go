package infra

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCircuitBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name: "test", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: 20 * time.Millisecond,
	})
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestMediaClient_Validate(t *testing.T) {
	c := NewMediaClient([]string{"res.cloudinary.com", "cloudinary.com"}, 1024, NewCircuitBreaker(DefaultCBConfig("media")))

	cases := []struct {
		raw  string
		want error
	}{
		{"https://res.cloudinary.com/demo/image/upload/a.jpg", nil},
		{"https://img.cloudinary.com/a.png", nil},
		{"", ErrMediaURLInvalid},
		{"::nope", ErrMediaURLInvalid},
		{"http://res.cloudinary.com/a.jpg", ErrMediaForbidden},
		{"https://evil.com/a.jpg", ErrMediaForbidden},
		{"https://res.cloudinary.com.evil.com/a.jpg", ErrMediaForbidden},
		{"https://user@res.cloudinary.com/a.jpg", ErrMediaForbidden},
		{"https://res.cloudinary.com:8443/a.jpg", ErrMediaForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			_, err := c.Validate(tc.raw)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestMediaClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("PNGDATA"))
		case "/big.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewMediaClient(nil, 32, NewCircuitBreaker(DefaultCBConfig("media")))
	get := func(path string) (*MediaObject, error) {
		u, _ := url.Parse(srv.URL + path)
		return c.Fetch(context.Background(), u)
	}

	obj, err := get("/ok.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("PNGDATA"), obj.Body)
	assert.NotEmpty(t, obj.CacheControl)

	_, err = get("/big.png")
	assert.ErrorIs(t, err, ErrMediaUpstream)
	_, err = get("/page.html")
	assert.ErrorIs(t, err, ErrMediaUpstream)
	_, err = get("/missing.png")
	assert.ErrorIs(t, err, ErrMediaUpstream)
}

func TestMediaClient_RedirectOutsideAllowList(t *testing.T) {
	var hits atomic.Int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("from-disallowed-host"))
	}))
	defer other.Close()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/x.png", http.StatusFound)
	}))
	defer origin.Close()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "media", FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})
	c := NewMediaClient([]string{"res.cloudinary.com"}, 1024, cb)
	u, _ := url.Parse(origin.URL + "/a.png")

	obj, err := c.Fetch(context.Background(), u)
	assert.Nil(t, obj)
	assert.ErrorIs(t, err, ErrMediaForbidden)
	assert.Zero(t, hits.Load())
	assert.Equal(t, CBClosed, cb.State())
}

func TestMediaClient_CheckRedirect(t *testing.T) {
	c := NewMediaClient([]string{"res.cloudinary.com"}, 1024, NewCircuitBreaker(DefaultCBConfig("media")))
	req := func(raw string) *http.Request {
		r, err := http.NewRequest(http.MethodGet, raw, nil)
		require.NoError(t, err)
		return r
	}
	first := []*http.Request{req("https://res.cloudinary.com/a.png")}

	assert.NoError(t, c.checkRedirect(req("https://res.cloudinary.com/b.png"), first))
	assert.ErrorIs(t, c.checkRedirect(req("https://evil.example.com/b.png"), first), ErrMediaForbidden)
	assert.ErrorIs(t, c.checkRedirect(req("http://res.cloudinary.com/b.png"), first), ErrMediaForbidden)
	assert.ErrorIs(t, c.checkRedirect(req("https://res.cloudinary.com:8443/b.png"), first), ErrMediaForbidden)
	assert.Equal(t, http.ErrUseLastResponse, c.checkRedirect(req("https://res.cloudinary.com/c.png"), append(first, first[0], first[0])))
}

func sampleReport() BillingReport {
	return BillingReport{
		Titulo:  "Facturación",
		Anio:    2025,
		Mes:     9,
		Headers: []string{"Fecha", "A", "B", "C", "D", "E", "F", "Total del Día", "H", "I"},
		Rows: [][]string{
			{"01/09/2025", "1", "2", "3", "4", "5", "6", "$1,200.50", "8", "nota"},
			{"02/09/2025", "", "", "", "", "", "", "300", "", ""},
		},
		Total: "1500.5",
	}
}

func TestGenerateBillingPDF(t *testing.T) {
	out, err := GenerateBillingPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = GenerateBillingPDF(BillingReport{})
	assert.Error(t, err)
}

func TestGenerateBillingXLSX(t *testing.T) {
	out, err := GenerateBillingXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("2025-09", "A2")
	require.NoError(t, err)
	assert.Equal(t, "01/09/2025", v)
	v, _ = f.GetCellValue("2025-09", "H1")
	assert.Equal(t, "Total del Día", v)
	v, _ = f.GetCellValue("2025-09", "B5")
	assert.Equal(t, "1500.5", v)
}
