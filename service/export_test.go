package service

import (
	"bytes"
	"testing"

	"github.com/eyescreen/eyescreen/db"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []db.RunItem{
		{Folder: "001", LeftImage: "001_left.jpg", RightImage: "001_right.jpg", Result: "\n• 青光眼\n• 白内障\n"},
		{Folder: "002", LeftImage: "l.jpg", RightImage: "r.jpg", Result: "正常"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "folder_name,left_eye_path,right_eye_path,result\n" +
		"001,001_left.jpg,001_right.jpg,\"• 青光眼\n• 白内障\"\n" +
		"002,l.jpg,r.jpg,正常\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV =\n%q\nwant\n%q", got, want)
	}
}
