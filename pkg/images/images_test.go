package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncode(t *testing.T) {
	got, err := Encode(pngHeader)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("data uri = %q", got)
	}

	got, err = Encode([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if err != nil || !strings.HasPrefix(got, "data:image/svg+xml;base64,") {
		t.Fatalf("svg = %q, %v", got, err)
	}
}

func TestEncodeRejects(t *testing.T) {
	if _, err := Encode([]byte("just some notes")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("text error = %v, want ErrNotImage", err)
	}
	big := make([]byte, MaxSize+1)
	copy(big, pngHeader)
	if _, err := Encode(big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("large error = %v, want ErrTooLarge", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;") {
		t.Fatalf("data uri = %q", got)
	}
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("missing file loaded")
	}
}

func TestLoadURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngHeader)
	}))
	defer ts.Close()

	got, err := Load(context.Background(), ts.URL+"/logo.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;") {
		t.Fatalf("data uri = %q", got)
	}
	if _, err := Load(context.Background(), ts.URL+"/nope.png"); err == nil {
		t.Fatal("404 loaded")
	}
}

func TestFindLogo(t *testing.T) {
	base, _ := url.Parse("https://school.example/about/")
	cases := []struct {
		page string
		want string
	}{
		{`<html><head><meta property="og:image" content="/img/crest.png"></head></html>`, "https://school.example/img/crest.png"},
		{`<html><head><link rel="icon" href="favicon.png"></head></html>`, "https://school.example/about/favicon.png"},
		{`<body><img src="a.jpg" alt="hero"><img src="//cdn.example/l.png" alt="School Logo"></body>`, "https://cdn.example/l.png"},
	}
	for _, c := range cases {
		got, err := FindLogo(strings.NewReader(c.page), base)
		if err != nil {
			t.Fatalf("FindLogo(%q): %v", c.page, err)
		}
		if got != c.want {
			t.Fatalf("FindLogo(%q) = %q, want %q", c.page, got, c.want)
		}
	}

	if _, err := FindLogo(strings.NewReader(`<img src="data:image/png;base64,AA" alt="logo">`), base); !errors.Is(err, ErrNoLogo) {
		t.Fatalf("data src error = %v, want ErrNoLogo", err)
	}
}

func TestDiscover(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><head><link rel="apple-touch-icon" href="/touch.png"></head></html>`))
		case "/touch.png":
			w.Write(pngHeader)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	got, err := Discover(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;") {
		t.Fatalf("data uri = %q", got)
	}
}
