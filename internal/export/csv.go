package export

import (
	"io"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	Scene    string `csv:"scene"`
	Part     int    `csv:"part"`
	File     string `csv:"file"`
	Location string `csv:"location"`
}

// WriteCSV 每个分段一行：scene,part,file,location。
func WriteCSV(w io.Writer, entries []Entry) error {
	rows := make([]*csvRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &csvRow{Scene: e.Scene, Part: e.Part, File: e.File, Location: e.Location})
	}
	return gocsv.Marshal(&rows, w)
}
