package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	inputs "github.com/richinsley/golens/inputs"
	options "github.com/richinsley/golens/options"
)

// Context is a GLFW window that feeds cursor and resize events into an
// inputs.State.
type Context struct {
	window *glfw.Window
	state  *inputs.State
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates and initializes a new GLFW window and returns a Context object.
// A hidden window is used as the GL context for offscreen rendering. state may
// be nil when nothing listens for input.
func New(options *options.LensOptions, visible bool, state *inputs.State) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(*options.Width, *options.Height, "golens", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		state:        state,
		keyCallbacks: make(map[glfw.Key]func()),
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	if state != nil {
		// The framebuffer can be larger than the window on HiDPI screens.
		state.Resize(win.GetFramebufferSize())
		win.SetCursorPosCallback(c.glfwCursorPosCallback)
		win.SetFramebufferSizeCallback(c.glfwFramebufferSizeCallback)
	}

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// Handle the default Escape key behavior
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}

	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// Cursor positions arrive in window coordinates, so they are normalized by the
// window size rather than the framebuffer size.
func (c *Context) glfwCursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	winWidth, winHeight := w.GetSize()
	c.state.SetCursor(xpos, ypos, winWidth, winHeight)
}

func (c *Context) glfwFramebufferSizeCallback(w *glfw.Window, width, height int) {
	c.state.Resize(width, height)
}

func (c *Context) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown only destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
