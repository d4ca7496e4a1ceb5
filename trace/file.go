package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// magic opens every trace file; the last byte is the format version.
const magic = "TWTR\x01"

// FileWriter appends envelopes to a zstd-compressed trace file.
type FileWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create truncates path, creating parent directories as needed.
func Create(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := bufio.NewWriterSize(enc, 128*1024)
	if _, err := w.WriteString(magic); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return nil, err
	}
	return &FileWriter{f: f, enc: enc, w: w}, nil
}

func (w *FileWriter) Write(env Envelope) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return os.ErrClosed
	}
	return WriteEnvelope(w.w, env)
}

// Send wraps data in an envelope of msgType and writes it.
func (w *FileWriter) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return w.Write(env)
}

// Close flushes every buffered frame and closes the file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	var errs []error
	if err := w.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	if err := w.enc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close encoder: %w", err))
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, err)
	}
	w.f, w.enc, w.w = nil, nil, nil
	return errors.Join(errs...)
}

// FileReader reads envelopes back from a trace file.
type FileReader struct {
	f   *os.File
	dec *zstd.Decoder
	r   *bufio.Reader
}

// Open checks the trace header and leaves the reader at the first envelope.
func Open(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := &FileReader{f: f, dec: dec, r: bufio.NewReaderSize(dec, 128*1024)}
	var head [len(magic)]byte
	if _, err := io.ReadFull(r.r, head[:]); err != nil || string(head[:]) != magic {
		_ = r.Close()
		if err == nil {
			err = fmt.Errorf("bad header %q", head[:])
		}
		return nil, fmt.Errorf("%s is not a trace file: %w", path, err)
	}
	return r, nil
}

// Next returns the next envelope, or io.EOF after the last one.
func (r *FileReader) Next() (Envelope, error) {
	return ReadEnvelope(r.r)
}

// Reader exposes the decompressed envelope stream.
func (r *FileReader) Reader() io.Reader { return r.r }

func (r *FileReader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
