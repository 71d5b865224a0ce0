// Package sink implements the framed output side of the engine: one header
// line, data lines, and a footer line carrying the count of data lines,
// optionally layered through gzip compression and age public-key
// encryption. The byte pipeline is forward-only and never materializes the
// full output in memory or as plaintext on disk.
package sink

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"filippo.io/age"
	"github.com/klauspost/compress/gzip"

	"github.com/molnia/dbatch/core"
)

const (
	// DefaultFooterLabel prefixes the data line count in the footer.
	DefaultFooterLabel = "Total Records: "

	partialSuffix = ".partial"
)

// Sink writes the framed artifact. The layer stack is built at Open in a
// fixed order (file, encryption, compression) and torn down in reverse at
// Finalize. The artifact is written under a temporary name and only renamed
// into place when Finalize succeeds, so an interrupted run can never be
// mistaken for a complete one.
type Sink struct {
	destination string
	headerLine  string
	footerLabel string
	fields      []string
	delimiter   rune
	compress    bool
	recipient   age.Recipient

	tmpPath string
	file    *os.File
	encw    io.WriteCloser
	gzw     *gzip.Writer
	w       io.Writer

	written   int64
	opened    bool
	finalized bool
}

func New(destination string, opts ...Option) *Sink {
	s := &Sink{
		destination: destination,
		footerLabel: DefaultFooterLabel,
		delimiter:   ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open acquires the destination and writes the header line immediately.
func (s *Sink) Open() error {
	if s.opened {
		return core.Sink(fmt.Errorf("sink already open"))
	}

	s.tmpPath = s.destination + partialSuffix

	file, err := os.Create(s.tmpPath)
	if err != nil {
		return core.Sink(fmt.Errorf("os.Create: %w", err))
	}
	s.file = file
	s.w = file

	if s.recipient != nil {
		encw, err := age.Encrypt(s.w, s.recipient)
		if err != nil {
			s.release()
			return core.Sink(fmt.Errorf("age.Encrypt: %w", err))
		}
		s.encw = encw
		s.w = encw
	}

	if s.compress {
		s.gzw = gzip.NewWriter(s.w)
		s.w = s.gzw
	}

	if _, err := fmt.Fprintf(s.w, "%s\n", s.header()); err != nil {
		s.release()
		return core.Sink(fmt.Errorf("write header: %w", err))
	}

	s.opened = true
	return nil
}

// WriteChunk serializes each record to one line and writes it through the
// full layered stream. The write counter advances per line actually
// written - a failure mid-chunk leaves the counter at the flushed lines
// only. Any error is fatal to the run; the sink never retries.
func (s *Sink) WriteChunk(records []core.Record) (int64, error) {
	if !s.opened {
		return 0, core.Sink(fmt.Errorf("sink is not open"))
	}

	var flushed int64
	for _, record := range records {
		line, err := encodeLine(record, s.fields, s.delimiter)
		if err != nil {
			return flushed, core.Sink(err)
		}

		if _, err := io.WriteString(s.w, line); err != nil {
			return flushed, core.Sink(fmt.Errorf("write data line: %w", err))
		}

		flushed++
		s.written++
	}

	return flushed, nil
}

// Written returns the number of data lines written so far.
func (s *Sink) Written() int64 {
	return s.written
}

// Finalize writes the footer line with the write counter, closes every
// layer in inner-to-outer order and renames the artifact into place. Only
// after Finalize returns is the destination visible.
func (s *Sink) Finalize() (string, error) {
	if !s.opened || s.finalized {
		return "", core.Sink(fmt.Errorf("sink is not open"))
	}

	footer := s.footerLabel + strconv.FormatInt(s.written, 10)
	if _, err := fmt.Fprintf(s.w, "%s\n", footer); err != nil {
		s.Abort()
		return "", core.Sink(fmt.Errorf("write footer: %w", err))
	}

	if err := s.close(); err != nil {
		_ = os.Remove(s.tmpPath)
		return "", core.Sink(err)
	}

	if err := os.Rename(s.tmpPath, s.destination); err != nil {
		_ = os.Remove(s.tmpPath)
		return "", core.Sink(fmt.Errorf("os.Rename: %w", err))
	}

	s.finalized = true
	return s.destination, nil
}

// Abort tears the layer stack down and removes the partial artifact. Safe
// to call at any point; aborting a finalized sink is a no-op.
func (s *Sink) Abort() {
	if s.finalized || s.file == nil {
		return
	}
	s.release()
	_ = os.Remove(s.tmpPath)
}

// close flushes and closes all layers, innermost first.
func (s *Sink) close() error {
	if s.gzw != nil {
		if err := s.gzw.Close(); err != nil {
			return fmt.Errorf("gzip close: %w", err)
		}
		s.gzw = nil
	}
	if s.encw != nil {
		if err := s.encw.Close(); err != nil {
			return fmt.Errorf("encryption close: %w", err)
		}
		s.encw = nil
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("file sync: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("file close: %w", err)
	}
	s.file = nil
	return nil
}

// release closes all layers best-effort, for error paths.
func (s *Sink) release() {
	if s.gzw != nil {
		_ = s.gzw.Close()
		s.gzw = nil
	}
	if s.encw != nil {
		_ = s.encw.Close()
		s.encw = nil
	}
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

// header returns the configured header line, falling back to the field
// names joined by the delimiter.
func (s *Sink) header() string {
	if s.headerLine != "" {
		return s.headerLine
	}
	return joinFields(s.fields, s.delimiter)
}
