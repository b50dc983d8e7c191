package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trapcam/internal/detect"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/output"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultDevice, cfg.GetDevice())
	assert.Equal(t, 1920, cfg.GetWidth())
	assert.Equal(t, 1080, cfg.GetHeight())
	assert.Equal(t, frame.FormatYUYV, cfg.GetPixelFormat())
	assert.Equal(t, 200*time.Millisecond, cfg.GetFrameInterval())
	assert.Equal(t, 4, cfg.GetDownsampleRatio())
	assert.Equal(t, int16(15), cfg.GetSobelThresh())
	assert.Equal(t, uint32(DefaultEdgeThresh), cfg.GetEdgeThresh())
	assert.Equal(t, detect.WindowLegacy, cfg.GetWindow())
	assert.Equal(t, "media", cfg.GetOutputPath())
	assert.Equal(t, "jpeg", cfg.GetOutputFormat())
	assert.Equal(t, output.JPEG, cfg.GetEncoding())
	assert.Equal(t, 4, cfg.GetOutputBufferSize())
	assert.Zero(t, cfg.GetCaptureTimeout())
	assert.Equal(t, time.Minute, cfg.GetStatsInterval())
	assert.Empty(t, cfg.GetResetID())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "trap.json", `{
  "camera": {"device": "/dev/video2", "width": 640, "height": 480, "format": "GREY", "frame_rate": 10, "reset_id": "1a2b:3c4d"},
  "downsample_ratio": 2,
  "sobel_thresh": 20,
  "edge_thresh": 120,
  "sobel_window": "full",
  "output_path": "/var/lib/trap",
  "output_format": "png",
  "output_buffer_size": 8,
  "capture_timeout": "30s",
  "stats_interval": "5m",
  "stats_window": 100
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/video2", cfg.GetDevice())
	assert.Equal(t, 640, cfg.GetWidth())
	assert.Equal(t, 480, cfg.GetHeight())
	assert.Equal(t, frame.FormatGray, cfg.GetPixelFormat())
	assert.Equal(t, 100*time.Millisecond, cfg.GetFrameInterval())
	assert.Equal(t, "1a2b:3c4d", cfg.GetResetID())
	assert.Equal(t, int16(20), cfg.GetSobelThresh())
	assert.Equal(t, uint32(120), cfg.GetEdgeThresh())
	assert.Equal(t, detect.WindowFull, cfg.GetWindow())
	assert.Equal(t, "/var/lib/trap", cfg.GetOutputPath())
	assert.Equal(t, "png", cfg.GetOutputFormat())
	assert.Equal(t, output.PNG, cfg.GetEncoding())
	assert.Equal(t, 8, cfg.GetOutputBufferSize())
	assert.Equal(t, 30*time.Second, cfg.GetCaptureTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetStatsInterval())
	assert.Equal(t, 100, cfg.GetStatsWindow())

	w, h := cfg.GetReducedSize()
	assert.Equal(t, 318, w)
	assert.Equal(t, 238, h)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/path/trap.json")
		assert.Error(t, err)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := Load(writeConfig(t, "trap.toml", `{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".json")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeConfig(t, "trap.json", `{"downsample_ratio": "four"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"output_path": "` + strings.Repeat("x", 1024*1024) + `"}`
		_, err := Load(writeConfig(t, "trap.json", body))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("fails validation", func(t *testing.T) {
		_, err := Load(writeConfig(t, "trap.json", `{"output_buffer_size": 0}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "empty config is valid", cfg: &Config{}},
		{name: "zero ratio", cfg: &Config{DownsampleRatio: ptrInt(0)}, wantErr: true},
		{
			name:    "ratio leaves too little to score",
			cfg:     &Config{Camera: &CameraConfig{Width: ptrInt(40), Height: ptrInt(40)}, DownsampleRatio: ptrInt(10)},
			wantErr: true,
		},
		{
			name: "ratio at minimum reduced size",
			cfg:  &Config{Camera: &CameraConfig{Width: ptrInt(40), Height: ptrInt(40)}, DownsampleRatio: ptrInt(8)},
		},
		{name: "odd yuyv width", cfg: &Config{Camera: &CameraConfig{Width: ptrInt(641)}}, wantErr: true},
		{
			name: "odd gray width",
			cfg:  &Config{Camera: &CameraConfig{Width: ptrInt(641), Format: ptrString("GRAY")}},
		},
		{name: "unknown format", cfg: &Config{Camera: &CameraConfig{Format: ptrString("MJPG")}}, wantErr: true},
		{name: "zero frame rate", cfg: &Config{Camera: &CameraConfig{FrameRate: ptrInt(0)}}, wantErr: true},
		{name: "negative sobel threshold", cfg: &Config{SobelThresh: ptrInt(-1)}, wantErr: true},
		{name: "sobel threshold overflow", cfg: &Config{SobelThresh: ptrInt(40000)}, wantErr: true},
		{name: "unknown window", cfg: &Config{SobelWindow: ptrString("5x5")}, wantErr: true},
		{name: "unknown output format", cfg: &Config{OutputFormat: ptrString("webp")}, wantErr: true},
		{name: "jpeg quality", cfg: &Config{JPEGQuality: ptrInt(101)}, wantErr: true},
		{name: "zero buffer", cfg: &Config{OutputBufferSize: ptrInt(0)}, wantErr: true},
		{name: "bad timeout", cfg: &Config{CaptureTimeout: ptrString("soon")}, wantErr: true},
		{name: "negative interval", cfg: &Config{StatsInterval: ptrString("-1s")}, wantErr: true},
		{name: "zero stats window", cfg: &Config{StatsWindow: ptrInt(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEdgeThresh(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want uint32
	}{
		{name: "default", cfg: &Config{}, want: DefaultEdgeThresh},
		{name: "explicit", cfg: &Config{EdgeThresh: ptrUint32(42)}, want: 42},
		// 1920x1080 at ratio 4 reduces to 478x268.
		{name: "derived from frame_diff_div", cfg: &Config{FrameDiffDiv: ptrUint32(400)}, want: 478 * 268 / 400},
		{name: "explicit wins over div", cfg: &Config{EdgeThresh: ptrUint32(7), FrameDiffDiv: ptrUint32(400)}, want: 7},
		{name: "zero div ignored", cfg: &Config{FrameDiffDiv: ptrUint32(0)}, want: DefaultEdgeThresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.GetEdgeThresh())
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{StatsInterval: ptrString("garbage"), CaptureTimeout: ptrString("")}
	assert.Equal(t, DefaultStatsInterval, cfg.GetStatsInterval())
	assert.Zero(t, cfg.GetCaptureTimeout())
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, cfg.GetWidth())
	assert.Equal(t, frame.FormatYUYV, cfg.GetPixelFormat())
	assert.Equal(t, uint32(DefaultEdgeThresh), cfg.GetEdgeThresh())
	assert.Equal(t, 30*time.Second, cfg.GetCaptureTimeout())
	assert.Empty(t, cfg.GetResetID())
}
