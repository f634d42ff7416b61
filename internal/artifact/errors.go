package artifact

import "fmt"

// DownloadError reports a failed fetch for one artifact. It carries the
// URL and, when the server responded, the HTTP status code. A download
// failure is scoped to its role; it never aborts other roles.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
