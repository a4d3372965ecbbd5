package options

type LensOptions struct {
	Help       *bool
	Mode       *string // window, record or still
	Backend    *string // gpu or cpu, for record and still
	Headless   *bool   // EGL instead of a hidden GLFW window for the gpu backend
	Texture    *string // file path or http(s) URL
	Shaders    *string // "embedded", a directory or an http(s) base URL
	UseCache   *bool
	MaxTexture *int // down-scale textures larger than this, 0 keeps the original size
	Wrap       *string
	Filter     *string
	Width      *int
	Height     *int
	Mouse      *string // fixed lens center "x,y" in UV space; empty orbits the center
	Orbit      *float64
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	HWAccel    *bool
	Workers    *int
}
