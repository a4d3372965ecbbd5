package api

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"

	// Blank imports for image decoders so image.Decode can handle them.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxFetchSize bounds the size of a response body. Larger bodies are an error.
var maxFetchSize int64 = 64 << 20

// Global client with a custom User-Agent header.
var httpClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	},
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "golens (+https://github.com/richinsley/golens)")
	return t.Transport.RoundTrip(req)
}

func init() {
	httpClient.Transport = &headerTransport{Transport: http.DefaultTransport}
}

// getCacheDir determines the appropriate OS-specific cache directory.
func getCacheDir(subdir string) (string, error) {
	var baseCacheDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		baseCacheDir = os.Getenv("LOCALAPPDATA")
		if baseCacheDir == "" {
			err = fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			err = fmt.Errorf("HOME environment variable not set")
		} else {
			baseCacheDir = filepath.Join(homeDir, "Library", "Caches")
		}
	default: // linux, bsd, etc.
		baseCacheDir = os.Getenv("XDG_CACHE_HOME")
		if baseCacheDir == "" {
			homeDir := os.Getenv("HOME")
			if homeDir == "" {
				err = fmt.Errorf("HOME environment variable not set")
			} else {
				baseCacheDir = filepath.Join(homeDir, ".cache")
			}
		}
	}

	if err != nil {
		return "", err
	}

	cacheDir := filepath.Join(baseCacheDir, "golens", subdir)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", cacheDir, err)
	}

	return cacheDir, nil
}

// cacheName keeps the remote file name readable while separating equal names
// from different hosts or paths.
func cacheName(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	base := "index"
	if u, err := url.Parse(rawURL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		base = path.Base(u.Path)
	}
	return hex.EncodeToString(sum[:4]) + "-" + base
}

// FetchBytes downloads rawURL. With useCache, a previous download is reused
// and a fresh one is stored under the user cache directory.
func FetchBytes(ctx context.Context, rawURL string, useCache bool) ([]byte, error) {
	var cachePath string
	if useCache {
		cacheDir, err := getCacheDir("media")
		if err != nil {
			log.Printf("Warning: cache disabled: %v", err)
		} else {
			cachePath = filepath.Join(cacheDir, cacheName(rawURL))
			if data, err := os.ReadFile(cachePath); err == nil {
				return data, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load %s, status code: %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read data from %s: %w", rawURL, err)
	}
	if int64(len(data)) > maxFetchSize {
		return nil, fmt.Errorf("response from %s is larger than %d bytes", rawURL, maxFetchSize)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Printf("Warning: failed to save %s to cache at %s: %v", rawURL, cachePath, err)
		}
	}
	return data, nil
}

// FetchText downloads rawURL as a string.
func FetchText(ctx context.Context, rawURL string, useCache bool) (string, error) {
	data, err := FetchBytes(ctx, rawURL, useCache)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchImage downloads and decodes an image. JPEG, PNG, BMP and WebP are
// supported.
func FetchImage(ctx context.Context, rawURL string, useCache bool) (image.Image, error) {
	data, err := FetchBytes(ctx, rawURL, useCache)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode downloaded image from %s: %w", rawURL, err)
	}
	return img, nil
}
