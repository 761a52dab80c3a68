// Package export 把装配好的场景写成外部播放器/表格可读的格式。
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/John-Robertt/SceneView/internal/domain"
)

const (
	FormatCSV  = "csv"
	FormatM3U  = "m3u"
	FormatXSPF = "xspf"
)

// Formats 是支持的导出格式。
var Formats = []string{FormatCSV, FormatM3U, FormatXSPF}

// Locator 把视频文件名解析为可播放位置（通常是 file:// URI）。
type Locator func(file string) (string, error)

// Entry 是一个场景分段的扁平视图。
type Entry struct {
	Scene    string
	Part     int // 从 1 开始
	Parts    int
	File     string
	Location string
}

// Entries 按场景顺序展开所有分段。loc 为 nil 或解析失败时 Location 退化为文件名。
func Entries(scenes domain.Scenes, loc Locator) []Entry {
	out := make([]Entry, 0, len(scenes)*2)
	for _, sc := range scenes {
		for i, f := range sc.Parts {
			e := Entry{Scene: sc.Name, Part: i + 1, Parts: len(sc.Parts), File: f, Location: f}
			if loc != nil {
				if l, err := loc(f); err == nil {
					e.Location = l
				}
			}
			out = append(out, e)
		}
	}
	return out
}

// ParseFormat 规范化导出格式名。
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	for _, ok := range Formats {
		if f == ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("未知导出格式 %q（可选：%s）", s, strings.Join(Formats, "|"))
}

// Write 按 format 输出；title 用于播放列表标题（csv 忽略）。
func Write(w io.Writer, format, title string, scenes domain.Scenes, loc Locator) error {
	entries := Entries(scenes, loc)
	switch format {
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatM3U:
		return WriteM3U(w, title, entries)
	case FormatXSPF:
		return WriteXSPF(w, title, entries)
	default:
		return fmt.Errorf("未知导出格式 %q", format)
	}
}

// FileName 返回该格式的默认文件名。
func FileName(format string) string {
	return "scenes." + format
}
