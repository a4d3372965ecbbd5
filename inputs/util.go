package inputs

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Helper to convert a wrap string to an OpenGL constant.
func getWrapMode(wrap string) int32 {
	switch wrap {
	case "repeat":
		return gl.REPEAT
	default:
		return gl.CLAMP_TO_EDGE // WebGL textures clamp unless asked otherwise
	}
}

// Helper to convert a filter string to OpenGL constants.
func getFilterMode(filter string) (minFilter, magFilter int32) {
	switch filter {
	case "mipmap":
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	case "nearest":
		return gl.NEAREST, gl.NEAREST
	default:
		return gl.LINEAR, gl.LINEAR
	}
}
