package procfs

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// PathPrefix is where Handler serves the control files.
const PathPrefix = "/ppm/policy/"

// Handler serves entries over HTTP: GET shows a file, PUT or POST writes it,
// and GET on PathPrefix lists the file names.
func Handler(entries []*Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, PathPrefix)
		if name == "" {
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			for _, e := range entries {
				_, _ = fmt.Fprintln(w, e.Name)
			}
			return
		}

		e, ok := Lookup(entries, name)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			var buf bytes.Buffer
			if err := e.Show(&buf); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write(buf.Bytes())
		case http.MethodPut, http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(r.Body, MaxWriteSize+1))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			n, err := e.Write(body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			logrus.Debugf("%s: wrote %d bytes", e.Name, n)
			_, _ = fmt.Fprintf(w, "%d\n", n)
		default:
			w.Header().Set("Allow", "GET, PUT, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
