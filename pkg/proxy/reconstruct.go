package proxy

import (
	"encoding/json"
	"io"
	"net/http"
)

// Reconstructor writes a downstream response to the client. The two
// implementations are deliberately distinct policies selected per route,
// never one code path that sometimes buffers and sometimes streams.
type Reconstructor interface {
	// Reconstruct writes resp to w. It does not close resp.Body.
	Reconstruct(w http.ResponseWriter, resp *http.Response) error
}

// StreamReconstructor passes the downstream response through unmodified:
// status, headers, and body are copied verbatim, with the body streamed
// chunk by chunk and flushed so server-sent events reach the client as
// they arrive.
type StreamReconstructor struct{}

// Reconstruct implements Reconstructor.
func (StreamReconstructor) Reconstruct(w http.ResponseWriter, resp *http.Response) error {
	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	rc := http.NewResponseController(w)
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			// Flush errors are ignored: not every ResponseWriter in the
			// chain supports flushing and buffering is then acceptable.
			rc.Flush()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// JSONReconstructor buffers the downstream body and re-emits it as JSON
// when it parses, or as raw text when it does not. The branch is a single
// content decision, not an error-recovery path. Downstream headers are
// copied after the default content type is set, so downstream intent wins.
//
// Buffering the full body makes this unsuitable for streaming routes; it
// serves only the single-tenant JSON-biased route.
type JSONReconstructor struct {
	// MaxBodySize bounds how much of the downstream body is read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64
}

// DefaultMaxBodySize is the buffered reconstruction body limit (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// Reconstruct implements Reconstructor.
func (r JSONReconstructor) Reconstruct(w http.ResponseWriter, resp *http.Response) error {
	maxSize := r.MaxBodySize
	if maxSize == 0 {
		maxSize = DefaultMaxBodySize
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		var url string
		if resp.Request != nil {
			url = resp.Request.URL.String()
		}
		return &DownstreamError{URL: url, Err: err}
	}

	h := w.Header()

	var parsed any
	var out []byte
	if json.Unmarshal(body, &parsed) == nil {
		out, err = json.Marshal(parsed)
		if err != nil {
			return err
		}
		h.Set("Content-Type", "application/json")
	} else {
		out = body
		h.Set("Content-Type", "text/plain; charset=utf-8")
	}

	copyHeaders(h, resp.Header)
	// Re-serialization may change the byte length; the stdlib recomputes it.
	h.Del("Content-Length")

	w.WriteHeader(resp.StatusCode)
	_, err = w.Write(out)
	return err
}
