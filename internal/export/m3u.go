package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteM3U 输出扩展 M3U 播放列表；同一场景的分段用 #EXTGRP 归组。
func WriteM3U(w io.Writer, title string, entries []Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#EXTM3U")
	if t := oneLine(title); t != "" {
		fmt.Fprintf(bw, "#PLAYLIST:%s\n", t)
	}

	prev := ""
	for i, e := range entries {
		if i == 0 || e.Scene != prev {
			fmt.Fprintf(bw, "#EXTGRP:%s\n", oneLine(e.Scene))
			prev = e.Scene
		}
		fmt.Fprintf(bw, "#EXTINF:-1,%s\n", oneLine(trackTitle(e)))
		fmt.Fprintln(bw, e.Location)
	}
	return bw.Flush()
}

func trackTitle(e Entry) string {
	if e.Parts <= 1 {
		return e.Scene
	}
	return fmt.Sprintf("%s (%d/%d)", e.Scene, e.Part, e.Parts)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
