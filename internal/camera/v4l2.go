package camera

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// V4L2 reads raw frames from a video4linux device by running ffmpeg with a
// rawvideo pipe on stdout. If ffmpeg exits, the next Capture restarts it.
type V4L2 struct {
	settings Settings

	// Command is the ffmpeg binary. Defaults to "ffmpeg" on PATH.
	Command string

	newCmd func(name string, args ...string) *exec.Cmd

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   *bytes.Buffer
	started  bool
	closed   bool
	restarts int
}

// NewV4L2 returns a camera for s. Nothing is spawned until Start.
func NewV4L2(s Settings) *V4L2 {
	return &V4L2{settings: s, Command: "ffmpeg", newCmd: exec.Command}
}

// Args returns the ffmpeg argument list for the configured stream.
func (c *V4L2) Args() []string {
	s := c.settings
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-input_format", s.pixFmt(),
		"-video_size", s.VideoSize(),
		"-framerate", strconv.Itoa(s.FrameRate),
		"-i", s.Device,
		"-f", "rawvideo",
		"-pix_fmt", s.pixFmt(),
		"-",
	}
}

// Start spawns ffmpeg.
func (c *V4L2) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.spawnLocked(); err != nil {
		return err
	}
	c.started = true
	diagf("streaming %s %s %s@%dfps", c.settings.Device, c.settings.VideoSize(), c.settings.Format, c.settings.FrameRate)
	return nil
}

func (c *V4L2) spawnLocked() error {
	cmd := c.newCmd(c.Command, c.Args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	c.cmd, c.stdout, c.stderr = cmd, stdout, stderr
	return nil
}

func (c *V4L2) stopLocked() {
	if c.cmd == nil {
		return
	}
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
	c.cmd.Wait()
	c.cmd, c.stdout = nil, nil
}

// Capture reads exactly one frame from the ffmpeg pipe.
func (c *V4L2) Capture() ([]byte, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if !c.started {
		c.mu.Unlock()
		return nil, ErrNotStarted
	}
	if c.stdout == nil {
		if err := c.spawnLocked(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
		c.restarts++
		opsf("restarted ffmpeg for %s (restart %d)", c.settings.Device, c.restarts)
	}
	stdout := c.stdout
	c.mu.Unlock()

	buf := make([]byte, c.settings.FrameSize())
	if _, err := io.ReadFull(stdout, buf); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return nil, ErrClosed
		}
		stderr := c.stderr
		c.stopLocked()
		msg := ""
		if stderr != nil {
			msg = strings.TrimSpace(stderr.String())
		}
		tracef("ffmpeg read failed: %v (stderr: %s)", err, msg)
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return buf, nil
}

// Restarts returns how many times ffmpeg was respawned after exiting.
func (c *V4L2) Restarts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restarts
}

// Close stops ffmpeg. Pending and future Capture calls return ErrClosed.
func (c *V4L2) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.stopLocked()
	return nil
}
