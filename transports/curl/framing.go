package curl

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StatusMarker precedes the HTTP status code that curl appends to stdout.
const StatusMarker = "__GIGA_HTTP_STATUS__:"

// writeOut is passed to --write-out; curl expands \n and %{http_code} itself.
const writeOut = `\n` + StatusMarker + `%{http_code}`

var errNoStatus = errors.New("curl output has no status marker")

// splitStatus separates the response body from the trailing status marker.
func splitStatus(out []byte) (int, []byte, error) {
	idx := bytes.LastIndex(out, []byte(StatusMarker))
	if idx < 0 {
		return 0, nil, errNoStatus
	}

	code := strings.TrimSpace(string(out[idx+len(StatusMarker):]))
	status, err := strconv.Atoi(code)
	if err != nil {
		return 0, nil, fmt.Errorf("curl status %q: %w", code, err)
	}

	body := out[:idx]
	body = bytes.TrimSuffix(body, []byte("\n"))
	return status, body, nil
}

// request describes one curl invocation.
type request struct {
	url      string
	headers  http.Header
	timeout  time.Duration
	insecure bool
	follow   bool
	// dataArgs carries the body flags (--data-urlencode or --data-raw).
	dataArgs []string
}

// args builds the curl argv for r.
func (r request) args() []string {
	args := []string{"--silent", "--show-error", "-X", http.MethodPost, r.url}
	if r.follow {
		args = append(args, "-L")
	}
	if r.insecure {
		args = append(args, "-k")
	}

	keys := make([]string, 0, len(r.headers))
	for key := range r.headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, v := range r.headers[key] {
			args = append(args, "-H", key+": "+v)
		}
	}

	args = append(args, r.dataArgs...)
	if r.timeout > 0 {
		args = append(args, "--max-time", strconv.FormatFloat(r.timeout.Seconds(), 'f', -1, 64))
	}
	return append(args, "--write-out", writeOut)
}
