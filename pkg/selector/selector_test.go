package selector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sonemaro/pngshrink/pkg/encoder"
	"github.com/sonemaro/pngshrink/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements logger.Logger interface for testing
type mockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *mockLogger) add(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, msg)
}

func (m *mockLogger) Info(msg string)                               { m.add("INFO: " + msg) }
func (m *mockLogger) Debug(msg string)                              { m.add("DEBUG: " + msg) }
func (m *mockLogger) Error(msg string)                              { m.add("ERROR: " + msg) }
func (m *mockLogger) Warn(msg string)                               { m.add("WARN: " + msg) }
func (m *mockLogger) Trace(msg string)                              { m.add("TRACE: " + msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }

// fakeWebP writes a WebP sibling of a fixed size per path, or fails. A failing
// path with a partial size leaves a truncated WebP behind.
type fakeWebP struct {
	fs      afero.Fs
	sizes   map[string]int
	fail    map[string]bool
	partial map[string]int
	calls   []string
}

func (f *fakeWebP) Encode(ctx context.Context, path string) error {
	f.calls = append(f.calls, path)
	if f.fail[path] {
		if n, ok := f.partial[path]; ok {
			_ = afero.WriteFile(f.fs, encoder.WebPPath(path), make([]byte, n), 0644)
		}
		return &encoder.Error{Tool: "cwebp", Path: path, ExitCode: 255}
	}
	return afero.WriteFile(f.fs, encoder.WebPPath(path), make([]byte, f.sizes[path]), 0644)
}

func writeSized(t *testing.T, fs afero.Fs, path string, size int) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0644))
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestSelectWinner(t *testing.T) {
	tests := []struct {
		name        string
		pngSize     int
		webpSize    int
		allowRemove bool
		winner      Winner
		pngKept     bool
		webpKept    bool
	}{
		{
			name:     "webp larger removes webp",
			pngSize:  1000,
			webpSize: 1200,
			winner:   WinnerPNG,
			pngKept:  true,
			webpKept: false,
		},
		{
			name:        "webp larger keeps png even when removal allowed",
			pngSize:     1000,
			webpSize:    1200,
			allowRemove: true,
			winner:      WinnerPNG,
			pngKept:     true,
			webpKept:    false,
		},
		{
			name:     "webp smaller keeps both by default",
			pngSize:  1000,
			webpSize: 800,
			winner:   WinnerWebP,
			pngKept:  true,
			webpKept: true,
		},
		{
			name:        "webp smaller removes png when allowed",
			pngSize:     1000,
			webpSize:    800,
			allowRemove: true,
			winner:      WinnerWebP,
			pngKept:     false,
			webpKept:    true,
		},
		{
			name:     "tie favours webp and keeps both by default",
			pngSize:  1000,
			webpSize: 1000,
			winner:   WinnerWebP,
			pngKept:  true,
			webpKept: true,
		},
		{
			name:        "tie favours webp and removes png when allowed",
			pngSize:     1000,
			webpSize:    1000,
			allowRemove: true,
			winner:      WinnerWebP,
			pngKept:     false,
			webpKept:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeSized(t, fs, "/img/a.png", tt.pngSize)
			writeSized(t, fs, "/img/a.webp", tt.webpSize)

			sel := New(Config{}, fs, &fakeWebP{fs: fs}, &mockLogger{})
			d := sel.SelectWinner("/img/a.png", "/img/a.webp", tt.allowRemove)

			assert.Equal(t, tt.winner, d.Winner)
			assert.Equal(t, uint64(tt.pngSize), d.PNGSize)
			assert.Equal(t, uint64(tt.webpSize), d.WebPSize)
			assert.False(t, d.Failed())
			assert.Equal(t, tt.pngKept, exists(t, fs, "/img/a.png"))
			assert.Equal(t, tt.webpKept, exists(t, fs, "/img/a.webp"))

			switch {
			case !tt.pngKept:
				assert.Equal(t, "/img/a.png", d.Removed)
			case !tt.webpKept:
				assert.Equal(t, "/img/a.webp", d.Removed)
			default:
				assert.Empty(t, d.Removed)
			}
		})
	}
}

func TestSelectWinnerTieIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		fs := afero.NewMemMapFs()
		writeSized(t, fs, "/a.png", 512)
		writeSized(t, fs, "/a.webp", 512)

		d := New(Config{}, fs, &fakeWebP{fs: fs}, &mockLogger{}).SelectWinner("/a.png", "/a.webp", true)
		require.Equal(t, WinnerWebP, d.Winner)
		require.Equal(t, "/a.png", d.Removed)
		require.True(t, exists(t, fs, "/a.webp"))
	}
}

func TestSelectWinnerSizeFailureRemovesNothing(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*testing.T, afero.Fs)
		pngErr  bool
		webpErr bool
	}{
		{
			name: "webp missing",
			setup: func(t *testing.T, fs afero.Fs) {
				writeSized(t, fs, "/a.png", 1000)
			},
			webpErr: true,
		},
		{
			name: "png missing",
			setup: func(t *testing.T, fs afero.Fs) {
				writeSized(t, fs, "/a.webp", 10)
			},
			pngErr: true,
		},
		{
			name:    "both missing",
			setup:   func(t *testing.T, fs afero.Fs) {},
			pngErr:  true,
			webpErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.setup(t, fs)
			before, err := afero.ReadDir(fs, "/")
			require.NoError(t, err)

			log := &mockLogger{}
			d := New(Config{}, fs, &fakeWebP{fs: fs}, log).SelectWinner("/a.png", "/a.webp", true)

			assert.Equal(t, WinnerNone, d.Winner)
			assert.Empty(t, d.Removed)
			assert.True(t, d.Failed())
			assert.Equal(t, tt.pngErr, d.PNGSizeErr != nil)
			assert.Equal(t, tt.webpErr, d.WebPSizeErr != nil)
			assert.Contains(t, log.logs, "ERROR: Failed to get file size")

			after, err := afero.ReadDir(fs, "/")
			require.NoError(t, err)
			assert.Equal(t, len(before), len(after))
		})
	}
}

func TestSelectWinnerRemovalFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	writeSized(t, base, "/a.png", 1000)
	writeSized(t, base, "/a.webp", 2000)
	fs := afero.NewReadOnlyFs(base)

	log := &mockLogger{}
	d := New(Config{}, fs, &fakeWebP{fs: base}, log).SelectWinner("/a.png", "/a.webp", false)

	assert.Equal(t, WinnerPNG, d.Winner)
	assert.Error(t, d.RemoveErr)
	assert.Empty(t, d.Removed)
	assert.True(t, exists(t, base, "/a.webp"))
	assert.Contains(t, log.logs, "ERROR: Failed to remove file")
}

func TestConvertAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	paths := []string{"/a.png", "/b.png", "/c.png"}
	for _, p := range paths {
		writeSized(t, fs, p, 100)
	}

	enc := &fakeWebP{
		fs:    fs,
		sizes: map[string]int{"/a.png": 50, "/c.png": 70},
		fail:  map[string]bool{"/b.png": true},
	}

	var converted []string
	sel := New(Config{
		OnConverted: func(path string, err error) { converted = append(converted, path) },
	}, fs, enc, &mockLogger{})

	failures := sel.ConvertAll(context.Background(), paths)

	assert.Equal(t, paths, enc.calls, "conversions run sequentially in input order")
	assert.Equal(t, paths, converted)
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures["/b.png"], encoder.ErrEncoderFailed))
	assert.True(t, exists(t, fs, "/a.webp"))
	assert.False(t, exists(t, fs, "/b.webp"))
	assert.True(t, exists(t, fs, "/c.webp"))
}

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	paths := []string{"/win.png", "/lose.png", "/tie.PNG", "/broken.png"}
	for _, p := range paths {
		writeSized(t, fs, p, 1000)
	}

	enc := &fakeWebP{
		fs: fs,
		sizes: map[string]int{
			"/win.png":  400,
			"/lose.png": 1500,
			"/tie.PNG":  1000,
		},
		fail: map[string]bool{"/broken.png": true},
	}

	log := &mockLogger{}
	sel := New(Config{AllowRemoveLargerPNG: true}, fs, enc, log)
	decisions := sel.Run(context.Background(), paths)

	require.Len(t, decisions, 4)
	for i, d := range decisions {
		assert.Equal(t, paths[i], d.PNGPath)
	}

	assert.Equal(t, WinnerWebP, decisions[0].Winner)
	assert.Equal(t, "/win.png", decisions[0].Removed)
	assert.Equal(t, uint64(600), decisions[0].Saved())

	assert.Equal(t, WinnerPNG, decisions[1].Winner)
	assert.Equal(t, "/lose.webp", decisions[1].Removed)
	assert.Equal(t, uint64(0), decisions[1].Saved())

	assert.Equal(t, WinnerWebP, decisions[2].Winner)
	assert.Equal(t, "/tie.webp", decisions[2].WebPPath)
	assert.Equal(t, "/tie.PNG", decisions[2].Removed)

	assert.Equal(t, WinnerNone, decisions[3].Winner)
	assert.Error(t, decisions[3].ConvertErr)
	assert.NoError(t, decisions[3].WebPSizeErr, "no size query after a failed conversion")
	assert.Empty(t, decisions[3].Removed)
	assert.True(t, exists(t, fs, "/broken.png"))

	var errorLogs int
	for _, l := range log.logs {
		if strings.HasPrefix(l, "ERROR: ") {
			errorLogs++
		}
	}
	assert.Equal(t, 1, errorLogs)
	assert.Contains(t, log.logs, "DEBUG: Skipping selection after failed conversion")
}

func TestRunFailedConversionKeepsPNG(t *testing.T) {
	tests := []struct {
		name    string
		stale   int
		partial int
		webp    int
	}{
		{
			name:    "truncated webp written before the encoder failed",
			partial: 10,
			webp:    10,
		},
		{
			name:  "smaller webp left from an earlier run",
			stale: 5,
			webp:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeSized(t, fs, "/a.png", 1000)
			if tt.stale > 0 {
				writeSized(t, fs, "/a.webp", tt.stale)
			}

			enc := &fakeWebP{
				fs:   fs,
				fail: map[string]bool{"/a.png": true},
			}
			if tt.partial > 0 {
				enc.partial = map[string]int{"/a.png": tt.partial}
			}

			sel := New(Config{AllowRemoveLargerPNG: true}, fs, enc, &mockLogger{})
			decisions := sel.Run(context.Background(), []string{"/a.png"})

			require.Len(t, decisions, 1)
			d := decisions[0]
			assert.Equal(t, WinnerNone, d.Winner)
			assert.True(t, errors.Is(d.ConvertErr, encoder.ErrEncoderFailed))
			assert.Empty(t, d.Removed)
			assert.Equal(t, uint64(0), d.Saved())

			info, err := fs.Stat("/a.png")
			require.NoError(t, err)
			assert.Equal(t, int64(1000), info.Size())

			info, err = fs.Stat("/a.webp")
			require.NoError(t, err)
			assert.Equal(t, int64(tt.webp), info.Size())
		})
	}
}
