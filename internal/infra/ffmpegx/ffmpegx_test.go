package ffmpegx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg 写一个 shell 脚本冒充 ffmpeg。
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("依赖 /bin/sh")
	}
	p := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestFrame_Missing(t *testing.T) {
	e := Extractor{Path: filepath.Join(t.TempDir(), "no-such-ffmpeg")}

	_, err := e.Frame(context.Background(), "/x.mp4")
	assert.True(t, errors.Is(err, ErrFFmpegMissing), "err=%v", err)
	assert.True(t, errors.Is(e.Check(), ErrFFmpegMissing))
}

func TestFrame_Stdout(t *testing.T) {
	e := Extractor{Path: fakeFFmpeg(t, `printf 'FRAME'`)}

	b, err := e.Frame(context.Background(), "/x.mp4")
	require.NoError(t, err)
	assert.Equal(t, "FRAME", string(b))
	assert.NoError(t, e.Check())
}

func TestFrame_FailureCarriesStderr(t *testing.T) {
	e := Extractor{Path: fakeFFmpeg(t, `echo "noise" >&2; echo "/x.mp4: No such file or directory" >&2; exit 1`)}

	_, err := e.Frame(context.Background(), "/x.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such file or directory")
}

func TestFrame_EmptyOutput(t *testing.T) {
	e := Extractor{Path: fakeFFmpeg(t, `exit 0`)}

	_, err := e.Frame(context.Background(), "/x.mp4")
	require.Error(t, err)
}

func TestArgs(t *testing.T) {
	args := Extractor{}.args("/m/PS-001.mp4")
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", DefaultSeek,
		"-i", "/m/PS-001.mp4",
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	}, args)
}
