package runtime

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/screeps-wasm/errors"
)

// Recorder writes one JSON line per TickReport into a zstd stream.
type Recorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewRecorder records into w. Closing the recorder does not close w.
func NewRecorder(w io.Writer) (*Recorder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "create zstd encoder")
	}
	return &Recorder{enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// CreateRecorder records into a new file at path, creating parent
// directories as needed.
func CreateRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "create record directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "create record file")
	}
	r, err := NewRecorder(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

// Record appends report and flushes it to the encoder.
func (r *Recorder) Record(report *TickReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return errors.NotInitialized(errors.PhaseTick, "recorder")
	}

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	r.n++
	return r.w.Flush()
}

// Len returns the number of recorded reports.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.w != nil {
		err = r.w.Flush()
		r.w = nil
	}
	if r.enc != nil {
		if cerr := r.enc.Close(); err == nil {
			err = cerr
		}
		r.enc = nil
	}
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
		r.f = nil
	}
	return err
}

// ReadRecording decodes every report of a recording.
func ReadRecording(src io.Reader) ([]TickReport, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "open zstd stream")
	}
	defer dec.Close()

	var out []TickReport
	jd := json.NewDecoder(dec)
	for {
		var rep TickReport
		if err := jd.Decode(&rep); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode tick report")
		}
		out = append(out, rep)
	}
}
