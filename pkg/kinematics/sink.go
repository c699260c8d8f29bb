package kinematics

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

// SampleSink receives a trajectory sample by sample.
type SampleSink interface {
	OnStart(total int) error
	OnSample(s Sample) error
	OnEnd() error
	Close() error
}

// JSONLSampleWriter writes one JSON object per sample per line.
type JSONLSampleWriter struct {
	c  io.Closer
	bw *bufio.Writer
}

// NewJSONLSampleWriter creates (or truncates) path for writing.
func NewJSONLSampleWriter(path string) (*JSONLSampleWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLSampleWriter{c: f, bw: bufio.NewWriter(f)}, nil
}

// NewJSONLSampleStream writes to an already open stream. Close does not
// close w.
func NewJSONLSampleStream(w io.Writer) *JSONLSampleWriter {
	return &JSONLSampleWriter{bw: bufio.NewWriter(w)}
}

func (w *JSONLSampleWriter) OnStart(total int) error { return nil }

func (w *JSONLSampleWriter) OnSample(s Sample) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLSampleWriter) OnEnd() error { return w.bw.Flush() }

func (w *JSONLSampleWriter) Close() error {
	if w.bw != nil {
		_ = w.bw.Flush()
	}
	if w.c != nil {
		return w.c.Close()
	}
	return nil
}

// Stream feeds every sample of the sampler to sink, in order.
func (s *Sampler) Stream(sink SampleSink) error {
	if err := sink.OnStart(s.Len()); err != nil {
		return err
	}
	var err error
	s.Each(func(smp Sample) bool {
		err = sink.OnSample(smp)
		return err == nil
	})
	if err != nil {
		return err
	}
	return sink.OnEnd()
}
