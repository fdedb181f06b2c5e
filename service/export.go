package service

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/eyescreen/eyescreen/db"
)

// CSVHeader mirrors the columns of the backend's spreadsheet.
func CSVHeader() []string {
	return []string{"folder_name", "left_eye_path", "right_eye_path", "result"}
}

// WriteCSV writes the items of a local batch (header + one row per folder).
func WriteCSV(w io.Writer, items []db.RunItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Folder, it.LeftImage, it.RightImage, strings.TrimSpace(it.Result)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
