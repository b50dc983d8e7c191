package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/trapcam/internal/detect"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/output"
)

// DefaultConfigPath is where cmd/trap looks for settings when -config is
// not given.
const DefaultConfigPath = "config/trap.json"

// Defaults for fields omitted from the settings file.
const (
	DefaultDevice           = "/dev/video0"
	DefaultWidth            = 1920
	DefaultHeight           = 1080
	DefaultFormat           = "YUYV"
	DefaultFrameRate        = 5
	DefaultDownsampleRatio  = 4
	DefaultSobelThresh      = 15
	DefaultEdgeThresh       = 300
	DefaultOutputPath       = "media"
	DefaultOutputFormat     = "jpeg"
	DefaultJPEGQuality      = 90
	DefaultOutputBufferSize = 4
	DefaultStatsInterval    = 60 * time.Second
	DefaultStatsWindow      = 600

	// minReducedSize is the smallest downsampled width or height that
	// still leaves an interior for the edge operator.
	minReducedSize = 5
)

// CameraConfig describes the capture device.
type CameraConfig struct {
	Device    *string `json:"device,omitempty"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
	Format    *string `json:"format,omitempty"`
	FrameRate *int    `json:"frame_rate,omitempty"`
	// ResetID is passed to usbreset (bus/device or vendor:product) at
	// startup and when the capture watchdog fires. Empty disables resets.
	ResetID *string `json:"reset_id,omitempty"`
}

// Config is the root settings document. It is loaded once at startup and
// treated as immutable afterwards. Pointer fields distinguish "unset" from
// zero so the Get* accessors can supply defaults.
type Config struct {
	Camera *CameraConfig `json:"camera,omitempty"`

	// Detection
	DownsampleRatio *int    `json:"downsample_ratio,omitempty"`
	SobelThresh     *int    `json:"sobel_thresh,omitempty"`
	EdgeThresh      *uint32 `json:"edge_thresh,omitempty"`
	FrameDiffDiv    *uint32 `json:"frame_diff_div,omitempty"`
	SobelWindow     *string `json:"sobel_window,omitempty"` // "legacy" or "full"

	// Output
	OutputPath       *string `json:"output_path,omitempty"`
	OutputFormat     *string `json:"output_format,omitempty"` // jpeg, png, bmp, tiff
	JPEGQuality      *int    `json:"jpeg_quality,omitempty"`
	OutputBufferSize *int    `json:"output_buffer_size,omitempty"`

	// Supervision
	CaptureTimeout *string `json:"capture_timeout,omitempty"` // duration string like "30s"; "0s" disables
	StatsInterval  *string `json:"stats_interval,omitempty"`
	StatsWindow    *int    `json:"stats_window,omitempty"`
}

func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }
func ptrUint32(v uint32) *uint32 { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB. Omitted fields fall back to
// defaults through the Get* accessors.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and the combinations that would leave the
// detector with nothing to score.
func (c *Config) Validate() error {
	format, err := frame.ParseFormat(c.GetFormat())
	if err != nil {
		return err
	}
	w, h := c.GetWidth(), c.GetHeight()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("camera dimensions must be positive, got %dx%d", w, h)
	}
	if format == frame.FormatYUYV && w%2 != 0 {
		return fmt.Errorf("camera width must be even for YUYV, got %d", w)
	}
	if fps := c.GetFrameRate(); fps <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", fps)
	}

	ratio := c.GetDownsampleRatio()
	if ratio < 1 {
		return fmt.Errorf("downsample_ratio must be at least 1, got %d", ratio)
	}
	if w/ratio < minReducedSize || h/ratio < minReducedSize {
		return fmt.Errorf("downsample_ratio %d reduces %dx%d below %dx%d",
			ratio, w, h, minReducedSize, minReducedSize)
	}

	if c.SobelThresh != nil && (*c.SobelThresh < 0 || *c.SobelThresh > 32767) {
		return fmt.Errorf("sobel_thresh must be between 0 and 32767, got %d", *c.SobelThresh)
	}
	if _, err := detect.ParseWindow(c.GetSobelWindow()); err != nil {
		return err
	}

	if _, err := output.ParseEncoding(c.GetOutputFormat()); err != nil {
		return err
	}
	if q := c.GetJPEGQuality(); q < 1 || q > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", q)
	}
	if n := c.GetOutputBufferSize(); n < 1 {
		return fmt.Errorf("output_buffer_size must be at least 1, got %d", n)
	}

	for name, v := range map[string]*string{
		"capture_timeout": c.CaptureTimeout,
		"stats_interval":  c.StatsInterval,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d)
		}
	}

	if c.StatsWindow != nil && *c.StatsWindow < 1 {
		return fmt.Errorf("stats_window must be at least 1, got %d", *c.StatsWindow)
	}

	return nil
}

func (c *Config) camera() *CameraConfig {
	if c.Camera == nil {
		return &CameraConfig{}
	}
	return c.Camera
}

// GetDevice returns the capture device path.
func (c *Config) GetDevice() string {
	if cam := c.camera(); cam.Device != nil && *cam.Device != "" {
		return *cam.Device
	}
	return DefaultDevice
}

// GetWidth returns the capture width in pixels.
func (c *Config) GetWidth() int {
	if cam := c.camera(); cam.Width != nil {
		return *cam.Width
	}
	return DefaultWidth
}

// GetHeight returns the capture height in pixels.
func (c *Config) GetHeight() int {
	if cam := c.camera(); cam.Height != nil {
		return *cam.Height
	}
	return DefaultHeight
}

// GetFormat returns the configured pixel format string.
func (c *Config) GetFormat() string {
	if cam := c.camera(); cam.Format != nil && *cam.Format != "" {
		return *cam.Format
	}
	return DefaultFormat
}

// GetPixelFormat returns the parsed pixel format. Call Validate first;
// an unknown format yields YUYV.
func (c *Config) GetPixelFormat() frame.Format {
	f, err := frame.ParseFormat(c.GetFormat())
	if err != nil {
		return frame.FormatYUYV
	}
	return f
}

// GetFrameRate returns the requested frames per second.
func (c *Config) GetFrameRate() int {
	if cam := c.camera(); cam.FrameRate != nil {
		return *cam.FrameRate
	}
	return DefaultFrameRate
}

// GetFrameInterval returns the time between frames at the configured rate.
func (c *Config) GetFrameInterval() time.Duration {
	fps := c.GetFrameRate()
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return time.Second / time.Duration(fps)
}

// GetResetID returns the usbreset device id, or "" when resets are off.
func (c *Config) GetResetID() string {
	if cam := c.camera(); cam.ResetID != nil {
		return *cam.ResetID
	}
	return ""
}

// GetDownsampleRatio returns the box blur reduction factor.
func (c *Config) GetDownsampleRatio() int {
	if c.DownsampleRatio == nil {
		return DefaultDownsampleRatio
	}
	return *c.DownsampleRatio
}

// GetSobelThresh returns the per-pixel gradient threshold.
func (c *Config) GetSobelThresh() int16 {
	if c.SobelThresh == nil {
		return DefaultSobelThresh
	}
	return int16(*c.SobelThresh)
}

// GetReducedSize returns the dimensions of the downsampled luma frames.
func (c *Config) GetReducedSize() (int, int) {
	return detect.ReducedSize(c.GetWidth(), c.GetHeight(), c.GetDownsampleRatio())
}

// GetEdgeThresh returns the motion threshold on the edge count. An explicit
// edge_thresh wins; otherwise a non-zero frame_diff_div derives it as a
// fraction of the reduced frame area.
func (c *Config) GetEdgeThresh() uint32 {
	if c.EdgeThresh != nil {
		return *c.EdgeThresh
	}
	if c.FrameDiffDiv != nil && *c.FrameDiffDiv > 0 {
		w, h := c.GetReducedSize()
		return uint32(w*h) / *c.FrameDiffDiv
	}
	return DefaultEdgeThresh
}

// GetSobelWindow returns the configured window name.
func (c *Config) GetSobelWindow() string {
	if c.SobelWindow == nil || *c.SobelWindow == "" {
		return detect.WindowLegacy.String()
	}
	return *c.SobelWindow
}

// GetWindow returns the parsed Sobel window, legacy on error.
func (c *Config) GetWindow() detect.Window {
	w, err := detect.ParseWindow(c.GetSobelWindow())
	if err != nil {
		return detect.WindowLegacy
	}
	return w
}

// GetOutputPath returns the directory snapshots are written to.
func (c *Config) GetOutputPath() string {
	if c.OutputPath == nil || *c.OutputPath == "" {
		return DefaultOutputPath
	}
	return *c.OutputPath
}

// GetOutputFormat returns the image encoding name for snapshots.
func (c *Config) GetOutputFormat() string {
	if c.OutputFormat == nil || *c.OutputFormat == "" {
		return DefaultOutputFormat
	}
	return *c.OutputFormat
}

// GetEncoding returns the parsed output encoding, JPEG on error.
func (c *Config) GetEncoding() output.Encoding {
	enc, err := output.ParseEncoding(c.GetOutputFormat())
	if err != nil {
		return output.JPEG
	}
	return enc
}

// GetJPEGQuality returns the JPEG encoder quality.
func (c *Config) GetJPEGQuality() int {
	if c.JPEGQuality == nil {
		return DefaultJPEGQuality
	}
	return *c.JPEGQuality
}

// GetOutputBufferSize returns the persist queue capacity.
func (c *Config) GetOutputBufferSize() int {
	if c.OutputBufferSize == nil {
		return DefaultOutputBufferSize
	}
	return *c.OutputBufferSize
}

// GetCaptureTimeout returns the watchdog timeout. Zero disables it.
func (c *Config) GetCaptureTimeout() time.Duration {
	return parseDuration(c.CaptureTimeout, 0)
}

// GetStatsInterval returns how often the score summary is logged.
func (c *Config) GetStatsInterval() time.Duration {
	return parseDuration(c.StatsInterval, DefaultStatsInterval)
}

// GetStatsWindow returns the number of recent scores kept for summaries.
func (c *Config) GetStatsWindow() int {
	if c.StatsWindow == nil {
		return DefaultStatsWindow
	}
	return *c.StatsWindow
}

func parseDuration(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}
