package util

import (
	"encoding/csv"
	"net/http"
	"strings"

	logs "github.com/danmuck/smplog"
)

// WithLog wraps an HTTP handler with a log line with the method and path.
func WithLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logs.Debugf("%s %s", r.Method, r.URL)
		next.ServeHTTP(w, r)
	})
}

// CSVToSlice parses a comma separated string into its constituent strings.
func CSVToSlice(in string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(in))
	reader.TrimLeadingSpace = true
	return reader.Read()
}
