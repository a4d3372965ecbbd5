package encoder

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame is one top-down RGBA frame ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

type Options struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	FFMPEGPath string
	// Codec is "h264" or "hevc".
	Codec string
	// HWAccel selects the platform hardware encoder instead of libx264/libx265.
	HWAccel bool
}

func (o Options) FrameSize() int {
	return o.Width * o.Height * 4
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", o.Width, o.Height)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", o.FPS)
	}
	if o.OutputFile == "" {
		return fmt.Errorf("no output file")
	}
	switch o.Codec {
	case "", "h264", "hevc":
	default:
		return fmt.Errorf("unsupported codec %q", o.Codec)
	}
	return nil
}

// videoEncoder returns the ffmpeg encoder name for codec on goos.
func videoEncoder(codec string, hwaccel bool, goos string) string {
	hevc := codec == "hevc"
	if hwaccel {
		switch goos {
		case "linux", "windows":
			if hevc {
				return "hevc_nvenc"
			}
			return "h264_nvenc"
		case "darwin":
			if hevc {
				return "hevc_videotoolbox"
			}
			return "h264_videotoolbox"
		}
	}
	if hevc {
		return "libx265"
	}
	return "libx264"
}

// Args returns the ffmpeg input and output arguments for raw RGBA frames
// arriving on stdin.
func Args(o Options, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": strconv.Itoa(o.FPS),
	}

	outputArgs = ffmpeg.KwArgs{
		"c:v":     videoEncoder(o.Codec, o.HWAccel, goos),
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}
	if o.Codec == "hevc" && strings.HasSuffix(strings.ToLower(o.OutputFile), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Encoder feeds frames to an ffmpeg process. WriteFrame is the producer side;
// a goroutine consumes the bounded frame channel and writes into ffmpeg's stdin.
type Encoder struct {
	frameSize int
	frames    chan *Frame
	done      chan error

	mu  sync.Mutex
	err error
}

// numBuffers bounds the frames queued between the render thread and ffmpeg.
const numBuffers = 3

// New starts ffmpeg with the arguments from Args.
func New(o Options) (*Encoder, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(o, runtime.GOOS)
	log.Printf("Encoding %dx%d@%d with %v to %s", o.Width, o.Height, o.FPS, outputArgs["c:v"], o.OutputFile)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(o.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if o.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(o.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock the consumer if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	return start(o.FrameSize(), pipeWriter, func() error { return <-errc }), nil
}

// start runs the consumer goroutine writing frames into sink. wait is called
// after sink is closed and reports the result of the process reading it.
func start(frameSize int, sink io.WriteCloser, wait func() error) *Encoder {
	e := &Encoder{
		frameSize: frameSize,
		frames:    make(chan *Frame, numBuffers),
		done:      make(chan error, 1),
	}
	go e.run(sink, wait)
	return e
}

func (e *Encoder) run(sink io.WriteCloser, wait func() error) {
	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			// Drain so the producer never blocks.
			continue
		}
		if len(frame.Pixels) != e.frameSize {
			writeErr = fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.frameSize)
		} else if _, err := sink.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
		}
		if writeErr != nil {
			log.Printf("Error: %v", writeErr)
			e.setErr(writeErr)
		}
	}
	sink.Close()
	waitErr := wait()
	if writeErr != nil {
		e.done <- writeErr
		return
	}
	if waitErr != nil {
		waitErr = fmt.Errorf("ffmpeg failed: %w", waitErr)
	}
	e.done <- waitErr
}

func (e *Encoder) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

// WriteFrame queues f for encoding. It returns the first write error seen by
// the consumer so the producer can stop early.
func (e *Encoder) WriteFrame(f *Frame) error {
	e.mu.Lock()
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.frames <- f
	return nil
}

// Close flushes the queued frames, closes ffmpeg's input and waits for it to
// exit. It must be called exactly once.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}
