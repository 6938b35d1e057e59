package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sitepulse/packages/domain"
)

func TestFetchCapturesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "TestBot/1.0" {
			t.Errorf("expected identifying user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>hi</title></html>"))
	}))
	defer srv.Close()

	c := New(5*time.Second, time.Second, "TestBot/1.0")
	snap, err := c.Fetch(context.Background(), srv.URL, domain.ViewportDesktop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.HTTPStatus != 200 {
		t.Errorf("expected status 200, got %d", snap.HTTPStatus)
	}
	if snap.RawHTML == "" || snap.LoadTime <= 0 {
		t.Errorf("expected body and timing, got %d bytes in %v", len(snap.RawHTML), snap.LoadTime)
	}
	if snap.Headers["Content-Type"] != "text/html" {
		t.Errorf("expected headers captured, got %v", snap.Headers)
	}
	if snap.Profile.Name != "desktop" {
		t.Errorf("expected profile recorded, got %q", snap.Profile.Name)
	}
}

func TestFetchBadStatusIsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(5*time.Second, time.Second, "TestBot/1.0")
	_, err := c.Fetch(context.Background(), srv.URL, domain.ViewportMobile)

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *domain.FetchError, got %v", err)
	}
	if fe.Kind != domain.FetchBadStatus || fe.Status != 503 {
		t.Errorf("expected bad_status 503, got %+v", fe)
	}
}

func TestFetchTimeoutIsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(50*time.Millisecond, time.Second, "TestBot/1.0")
	_, err := c.Fetch(context.Background(), srv.URL, domain.ViewportDesktop)

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *domain.FetchError, got %v", err)
	}
	if fe.Kind != domain.FetchTimeout {
		t.Errorf("expected timeout kind, got %q", fe.Kind)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	c := New(time.Second, time.Second, "TestBot/1.0")
	_, err := c.Fetch(context.Background(), "http://127.0.0.1:1", domain.ViewportDesktop)
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *domain.FetchError, got %v", err)
	}
}

func TestHeadProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
	}))
	defer srv.Close()

	c := New(5*time.Second, time.Second, "TestBot/1.0")
	elapsed, err := c.HeadProbe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed <= 0 {
		t.Errorf("expected positive elapsed time, got %v", elapsed)
	}
}
