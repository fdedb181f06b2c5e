package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

// Upload is one file part. Name is sent as the part's filename. When Open is
// set it is called while the part is written and its reader closed right
// after; Body is then ignored.
type Upload struct {
	Name string
	Body io.Reader
	Open func() (io.ReadCloser, error)
}

// FileUpload sends the file at path as name, opening it only while its part
// is written.
func FileUpload(name, path string) Upload {
	return Upload{Name: name, Open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

type BatchResult struct {
	ExcelPath string
	Processed int
}

// APIError is a non-2xx response or a response with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend http %d", e.Status)
	}
	return fmt.Sprintf("backend http %d: %s", e.Status, e.Message)
}

// NotFound reports a 404 from the backend (unknown download file).
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// envelope is the backend's response shape; which fields are set depends
// on the route.
type envelope struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Error          string `json:"error"`
	Result         string `json:"result"`
	Reply          string `json:"reply"`
	ExcelPath      string `json:"excel_path"`
	ProcessedCount int    `json:"processed_count"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
