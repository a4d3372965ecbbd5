package shader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	api "github.com/richinsley/golens/api"
)

// File names Dir and Remote providers load.
const (
	VertexFile   = "vertexShader.glsl"
	FragmentFile = "fragmentShader.glsl"
)

// Sources is the result of loading a shader: WebGL2 vertex and fragment
// sources ready to be translated and compiled.
type Sources struct {
	// Origin describes where the sources came from, for logs.
	Origin   string
	Vertex   string
	Fragment string
}

// Provider supplies the lens shader sources. Loading happens once at
// startup, before the render loop.
type Provider interface {
	Load(ctx context.Context) (*Sources, error)
}

// Embedded provides the shaders compiled into the binary.
type Embedded struct{}

func (Embedded) Load(ctx context.Context) (*Sources, error) {
	return &Sources{Origin: "embedded", Vertex: LensVertexShader(), Fragment: LensFragmentShader()}, nil
}

// Dir loads VertexFile and FragmentFile from a directory on disk.
type Dir string

func (d Dir) Load(ctx context.Context) (*Sources, error) {
	read := func(stage, name string) (string, error) {
		data, err := os.ReadFile(filepath.Join(string(d), name))
		if err != nil {
			return "", fmt.Errorf("failed to load %s shader: %w", stage, err)
		}
		return string(data), nil
	}
	vertex, err := read("vertex", VertexFile)
	if err != nil {
		return nil, err
	}
	fragment, err := read("fragment", FragmentFile)
	if err != nil {
		return nil, err
	}
	return newSources(string(d), vertex, fragment)
}

// Remote fetches VertexFile and FragmentFile relative to BaseURL. Shader
// text is fetched fresh unless UseCache is set.
type Remote struct {
	BaseURL  string
	UseCache bool
}

func (r Remote) Load(ctx context.Context) (*Sources, error) {
	base, err := url.Parse(strings.TrimSuffix(r.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid shader base url %q: %w", r.BaseURL, err)
	}
	fetch := func(stage, name string) (string, error) {
		u := base.ResolveReference(&url.URL{Path: name}).String()
		code, err := api.FetchText(ctx, u, r.UseCache)
		if err != nil {
			return "", fmt.Errorf("failed to load %s shader: %w", stage, err)
		}
		return code, nil
	}
	vertex, err := fetch("vertex", VertexFile)
	if err != nil {
		return nil, err
	}
	fragment, err := fetch("fragment", FragmentFile)
	if err != nil {
		return nil, err
	}
	return newSources(base.String(), vertex, fragment)
}

func newSources(origin, vertex, fragment string) (*Sources, error) {
	if strings.TrimSpace(vertex) == "" {
		return nil, fmt.Errorf("vertex shader from %s is empty", origin)
	}
	if strings.TrimSpace(fragment) == "" {
		return nil, fmt.Errorf("fragment shader from %s is empty", origin)
	}
	return &Sources{Origin: origin, Vertex: vertex, Fragment: fragment}, nil
}

// NewProvider picks a provider from a command-line value: empty or
// "embedded" for the built-in shaders, an http(s) URL for a remote base, or a
// directory path. Remote shaders are not cached so server edits show up on
// the next start.
func NewProvider(value string) Provider {
	switch {
	case value == "" || value == "embedded":
		return Embedded{}
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return Remote{BaseURL: value}
	default:
		return Dir(value)
	}
}
