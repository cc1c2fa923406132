package relay

import (
	"strings"
	"testing"
)

// flushRecorder counts flushes behind a strings.Builder.
type flushRecorder struct {
	strings.Builder
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestForwardSSE(t *testing.T) {
	upstream := strings.NewReader(
		"event: message\n" +
			"data: {\"a\":1}\n" +
			"\n" +
			"data: {\"b\":2}\n" +
			"\n" +
			"data: [DONE]\n" +
			"\n",
	)

	rec := &flushRecorder{}
	if err := ForwardSSE(rec, rec, upstream); err != nil {
		t.Fatalf("ForwardSSE returned error: %v", err)
	}

	want := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n"
	if rec.String() != want {
		t.Errorf("forwarded = %q, want %q", rec.String(), want)
	}
	if rec.flushes != 3 {
		t.Errorf("flushes = %d, want one per data line", rec.flushes)
	}
}

func TestForwardSSEStopsAtDone(t *testing.T) {
	upstream := strings.NewReader(
		"data: {\"a\":1}\n\n" +
			"data: [DONE]\n\n" +
			"data: {\"after\":true}\n\n",
	)

	rec := &flushRecorder{}
	if err := ForwardSSE(rec, rec, upstream); err != nil {
		t.Fatalf("ForwardSSE returned error: %v", err)
	}

	if strings.Contains(rec.String(), "after") {
		t.Errorf("data after [DONE] must not be forwarded, got %q", rec.String())
	}
	if !strings.Contains(rec.String(), "[DONE]") {
		t.Error("the [DONE] marker itself must be forwarded")
	}
}

func TestForwardSSESkipsNonConformingDataLines(t *testing.T) {
	// Lines missing the space after "data:" are not valid frames: they are
	// neither forwarded nor treated as the terminator.
	upstream := strings.NewReader(
		"data:{\"compact\":true}\n\n" +
			"data:[DONE]\n\n" +
			"data: {\"a\":1}\n\n" +
			"data: [DONE]\n\n",
	)

	rec := &flushRecorder{}
	if err := ForwardSSE(rec, rec, upstream); err != nil {
		t.Fatalf("ForwardSSE returned error: %v", err)
	}

	if strings.Contains(rec.String(), "compact") {
		t.Errorf("nonconforming line must not be forwarded, got %q", rec.String())
	}
	want := "data: {\"a\":1}\n\ndata: [DONE]\n\n"
	if rec.String() != want {
		t.Errorf("forwarded = %q, want %q", rec.String(), want)
	}
}

func TestForwardSSEEOFWithoutDone(t *testing.T) {
	upstream := strings.NewReader("data: {\"a\":1}\n\n")

	rec := &flushRecorder{}
	if err := ForwardSSE(rec, rec, upstream); err != nil {
		t.Fatalf("ForwardSSE returned error: %v", err)
	}
	if !strings.Contains(rec.String(), "{\"a\":1}") {
		t.Errorf("forwarded = %q", rec.String())
	}
}
