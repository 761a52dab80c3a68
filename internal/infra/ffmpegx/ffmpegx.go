// Package ffmpegx 通过外部 ffmpeg 进程截取视频帧。
package ffmpegx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultSeek 是截帧位置（跳过片头黑帧）。
const DefaultSeek = "00:00:01"

// ErrFFmpegMissing 表示找不到 ffmpeg 可执行文件。
var ErrFFmpegMissing = errors.New("ffmpeg: 未找到可执行文件")

// Extractor 调用 ffmpeg 把单帧以 MJPEG 输出到 stdout。
type Extractor struct {
	// Path 是 ffmpeg 可执行文件（名字或路径）；为空时使用 "ffmpeg"。
	Path string
	// Seek 为空时使用 DefaultSeek。
	Seek string
}

// Check 确认 ffmpeg 可用（只做查找，不执行）。
func (e Extractor) Check() error {
	if _, err := exec.LookPath(e.bin()); err != nil {
		return fmt.Errorf("%w：%q", ErrFFmpegMissing, e.bin())
	}
	return nil
}

// Frame 截取 src 的一帧，返回 JPEG 字节。
func (e Extractor) Frame(ctx context.Context, src string) ([]byte, error) {
	bin, err := exec.LookPath(e.bin())
	if err != nil {
		return nil, fmt.Errorf("%w：%q", ErrFFmpegMissing, e.bin())
	}

	cmd := exec.CommandContext(ctx, bin, e.args(src)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg 执行失败：%w：%s", err, lastLine(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg 未输出帧：%s", lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (e Extractor) bin() string {
	if p := strings.TrimSpace(e.Path); p != "" {
		return p
	}
	return "ffmpeg"
}

func (e Extractor) args(src string) []string {
	seek := e.Seek
	if seek == "" {
		seek = DefaultSeek
	}
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", seek,
		"-i", src,
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	}
}

// lastLine 取 stderr 的最后一个非空行（ffmpeg 的真正错误通常在最后）。
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return "<无输出>"
}
