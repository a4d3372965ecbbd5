package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func isolateCache(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchTextAndUserAgent(t *testing.T) {
	isolateCache(t)
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte("void main() {}"))
	}))
	defer srv.Close()

	got, err := FetchText(context.Background(), srv.URL+"/shaders/fragmentShader.glsl", false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "void main() {}" {
		t.Fatalf("got %q", got)
	}
	if !strings.HasPrefix(agent, "golens") {
		t.Errorf("user agent = %q", agent)
	}
}

func TestFetchStatusError(t *testing.T) {
	isolateCache(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := FetchText(context.Background(), srv.URL+"/missing.glsl", true)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want status 404", err)
	}
}

func TestFetchUsesCache(t *testing.T) {
	isolateCache(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached body"))
	}))
	defer srv.Close()

	u := srv.URL + "/a/body.txt"
	for i := 0; i < 3; i++ {
		got, err := FetchText(context.Background(), u, true)
		if err != nil {
			t.Fatal(err)
		}
		if got != "cached body" {
			t.Fatalf("got %q", got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hit %d times, want 1", n)
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	isolateCache(t)
	defer func(n int64) { maxFetchSize = n }(maxFetchSize)
	maxFetchSize = 8

	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	body = "exactly8"
	if got, err := FetchText(context.Background(), srv.URL+"/fits.glsl", true); err != nil || got != body {
		t.Fatalf("FetchText = %q, %v", got, err)
	}

	body = "nine byte"
	u := srv.URL + "/large.glsl"
	if _, err := FetchText(context.Background(), u, true); err == nil || !strings.Contains(err.Error(), "larger than 8 bytes") {
		t.Fatalf("err = %v, want size error", err)
	}
	// A truncated body must not be cached and served later.
	body = "short"
	got, err := FetchText(context.Background(), u, true)
	if err != nil || got != "short" {
		t.Fatalf("after oversize: FetchText = %q, %v", got, err)
	}
}

func TestFetchImage(t *testing.T) {
	isolateCache(t)
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := FetchImage(context.Background(), srv.URL+"/background.png", false)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 30 {
		t.Fatalf("pixel = %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestFetchImageDecodeError(t *testing.T) {
	isolateCache(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	if _, err := FetchImage(context.Background(), srv.URL+"/bad.jpg", false); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCacheName(t *testing.T) {
	a := cacheName("https://a.example/tex/background.jpg")
	b := cacheName("https://b.example/tex/background.jpg")
	if a == b {
		t.Fatal("different urls share a cache name")
	}
	if !strings.HasSuffix(a, "-background.jpg") {
		t.Errorf("cache name %q lost file name", a)
	}
	if got := cacheName("https://a.example/"); !strings.HasSuffix(got, "-index") {
		t.Errorf("root cache name = %q", got)
	}
}
