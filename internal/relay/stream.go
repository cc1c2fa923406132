package relay

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

const (
	// dataPrefix frames every forwarded SSE line, space included.
	dataPrefix = "data: "
	// donePayload terminates forwarding when observed from the upstream.
	donePayload = "[DONE]"
)

// ForwardSSE relays an upstream SSE body to the client line by line. Each
// "data: " line is forwarded unmodified with trailing blank-line framing and
// flushed immediately, so the client sees tokens as they arrive. Forwarding
// stops at the [DONE] payload (which is itself forwarded) or at upstream EOF.
// A write error means the client went away; forwarding stops without
// surfacing an error, since headers are already sent.
func ForwardSSE(w io.Writer, flusher http.Flusher, upstream io.Reader) error {
	scanner := bufio.NewScanner(upstream)
	// Allow for large model chunks on a single SSE line.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		if _, err := io.WriteString(w, line+"\n\n"); err != nil {
			return nil
		}
		flusher.Flush()
		if line[len(dataPrefix):] == donePayload {
			return nil
		}
	}

	return scanner.Err()
}
