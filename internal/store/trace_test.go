package store

import (
	"io"
	"testing"
	"time"
)

func traceEntry(iter int, obj float64) TraceEntry {
	return TraceEntry{
		Iteration:   iter,
		Objective:   obj,
		Hpwl:        obj * 0.8,
		Overlap:     obj * 0.1,
		OutOfBounds: obj * 0.05,
		Asymmetry:   obj * 0.03,
		Path:        obj * 0.02,
		Timestamp:   time.Now().UTC(),
	}
}

func TestTraceWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := tw.Write(traceEntry(i, 100-float64(i)*10)); err != nil {
			t.Fatalf("Write failed at %d: %v", i, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Iteration != i {
			t.Errorf("Entry %d has iteration %d", i, e.Iteration)
		}
		if e.Objective != 100-float64(i)*10 {
			t.Errorf("Entry %d has objective %g", i, e.Objective)
		}
	}
}

func TestTraceReaderEOF(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	if err := tw.Write(traceEntry(0, 1)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Read(); err != nil {
		t.Fatalf("First Read failed: %v", err)
	}
	if _, err := tr.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTraceAppendMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(0, 100))
	tw.Close()

	tw, err = NewTraceWriter(dir, "job-1", true)
	if err != nil {
		t.Fatalf("NewTraceWriter append failed: %v", err)
	}
	tw.Write(traceEntry(1, 90))
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after append, got %d", len(entries))
	}
	if entries[1].Iteration != 1 {
		t.Errorf("Appended entry has iteration %d", entries[1].Iteration)
	}
}

func TestTraceTruncateMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(0, 100))
	tw.Close()

	tw, err = NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("Second NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(0, 50))
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Objective != 50 {
		t.Errorf("Expected the file to be truncated, got %+v", entries)
	}
}

func TestTraceFlushMakesEntriesVisible(t *testing.T) {
	dir := t.TempDir()
	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	defer tw.Close()

	tw.Write(traceEntry(0, 100))
	if err := tw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry visible after Flush, got %d", len(entries))
	}
}
