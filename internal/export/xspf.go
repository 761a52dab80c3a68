package export

import (
	"encoding/xml"
	"io"
	"strings"
)

type xspfPlaylist struct {
	XMLName xml.Name    `xml:"playlist"`
	Version string      `xml:"version,attr"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title,omitempty"`
	Tracks  []xspfTrack `xml:"trackList>track"`
}

type xspfTrack struct {
	Location string `xml:"location"`
	Title    string `xml:"title"`
	Album    string `xml:"album"`
	TrackNum int    `xml:"trackNum"`
}

// WriteXSPF 输出 XSPF 播放列表：album 为场景名，trackNum 为分段序号。
//
// XSPF 要求 location 是 URI，调用方应传入返回 file:// 的 Locator。
func WriteXSPF(w io.Writer, title string, entries []Entry) error {
	pl := xspfPlaylist{
		Version: "1",
		Xmlns:   "http://xspf.org/ns/0/",
		Title:   strings.TrimSpace(title),
		Tracks:  make([]xspfTrack, 0, len(entries)),
	}
	for _, e := range entries {
		pl.Tracks = append(pl.Tracks, xspfTrack{
			Location: e.Location,
			Title:    trackTitle(e),
			Album:    e.Scene,
			TrackNum: e.Part,
		})
	}

	b, err := xml.MarshalIndent(pl, "", "  ")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
