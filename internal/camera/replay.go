package camera

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/banshee-data/trapcam/internal/convert"
	"github.com/banshee-data/trapcam/internal/fsutil"
	"github.com/banshee-data/trapcam/internal/timeutil"
)

var replayExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Replay serves still images from a directory as camera frames, paced at
// the configured frame rate. Images are scaled to the configured size and
// encoded in the configured pixel format when the camera starts.
type Replay struct {
	fs       fsutil.FileSystem
	dir      string
	settings Settings
	clock    timeutil.Clock

	// Loop restarts from the first image after the last one. Without it,
	// Capture blocks after the last image until Close.
	Loop bool

	mu     sync.Mutex
	frames [][]byte
	next   int
	last   time.Time
	closed bool
	done   chan struct{}
}

// NewReplay returns a replay camera over the images in dir.
func NewReplay(fsys fsutil.FileSystem, dir string, s Settings, clock timeutil.Clock) *Replay {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Replay{fs: fsys, dir: dir, settings: s, clock: clock, Loop: true, done: make(chan struct{})}
}

// Start decodes every supported image in the directory.
func (r *Replay) Start() error {
	names, err := r.fs.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("read replay directory: %w", err)
	}

	var frames [][]byte
	for _, name := range names {
		if !replayExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		data, err := r.fs.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		buf, err := r.encode(data)
		if err != nil {
			opsf("skipping replay image %s: %v", name, err)
			continue
		}
		frames = append(frames, buf)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no usable images in %s", r.dir)
	}

	r.mu.Lock()
	r.frames = frames
	r.mu.Unlock()
	diagf("replaying %d images from %s at %dfps", len(frames), r.dir, r.settings.FrameRate)
	return nil
}

func (r *Replay) encode(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var img image.Image = src
	rect := image.Rect(0, 0, r.settings.Width, r.settings.Height)
	if src.Bounds() != rect {
		dst := image.NewRGBA(rect)
		draw.NearestNeighbor.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		img = dst
	}
	return convert.FromImage(img, r.settings.Format)
}

func (r *Replay) interval() time.Duration {
	if r.settings.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(r.settings.FrameRate)
}

// Capture returns the next image after waiting out the frame interval.
func (r *Replay) Capture() ([]byte, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if r.frames == nil {
		r.mu.Unlock()
		return nil, ErrNotStarted
	}
	if r.next >= len(r.frames) {
		if !r.Loop {
			r.mu.Unlock()
			<-r.done
			return nil, ErrClosed
		}
		r.next = 0
	}
	buf := r.frames[r.next]
	r.next++
	last := r.last
	r.mu.Unlock()

	if !last.IsZero() {
		if wait := r.interval() - r.clock.Since(last); wait > 0 {
			r.clock.Sleep(wait)
		}
	}

	r.mu.Lock()
	r.last = r.clock.Now()
	r.mu.Unlock()
	return buf, nil
}

// Close releases blocked Capture calls.
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	return nil
}
