//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/golens/graphics"
)

// NewHeadless reports that EGL pbuffer contexts are only available on Linux.
func NewHeadless(width, height int) (graphics.Context, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}
