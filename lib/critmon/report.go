// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package critmon

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
)

// scratchLen is the capacity of a session's field buffer. It must be
// large enough for the longest single formatted field: a comma, a
// 20-digit seconds value, a dot, and nine nanosecond digits.
const scratchLen = 64

// Mode is the fixed mode of the pseudo-file: a regular file readable
// by owner, group, and other, never writable or executable.
const Mode fs.FileMode = 0o444

var (
	// ErrAccessDenied is returned by Open for any access mode other
	// than read-only.
	ErrAccessDenied = errors.New("critmon: report is read-only")

	// ErrNotSupported is returned for operations the pseudo-file does
	// not implement (write, seek, ioctl).
	ErrNotSupported = errors.New("critmon: operation not supported")

	// ErrClosed is returned when a session is used after Close.
	ErrClosed = errors.New("critmon: session closed")
)

// fieldKind identifies one field within a per-CPU record.
type fieldKind int

const (
	fieldCPU fieldKind = iota
	fieldPreemption
	fieldCritSection
	fieldNewline
)

// Config describes the report's shape. The two enable flags mirror
// the instrumentation build options: a disabled metric's field and
// its leading comma are omitted from every record and its counter is
// never sampled.
type Config struct {
	// Source provides the per-CPU maxima. Required.
	Source StatsSource

	// TickRate converts raw counter ticks to seconds. Zero means
	// DefaultTickRate (ticks are nanoseconds).
	TickRate TickRate

	// Preemption enables the preemption-disabled maximum field.
	Preemption bool

	// CritSection enables the critical-section maximum field.
	CritSection bool
}

// Reader describes one report and opens sessions onto it. A Reader is
// immutable after construction and safe for concurrent use; each
// Session is owned by a single caller at a time.
type Reader struct {
	source StatsSource
	rate   TickRate
	fields []fieldKind
}

// NewReader validates cfg and builds a Reader. The field order of
// every record is fixed here, once: CPU id, then the enabled duration
// fields, then the newline.
func NewReader(cfg Config) (*Reader, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("critmon: config requires a StatsSource")
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultTickRate
	}

	fields := []fieldKind{fieldCPU}
	if cfg.Preemption {
		fields = append(fields, fieldPreemption)
	}
	if cfg.CritSection {
		fields = append(fields, fieldCritSection)
	}
	fields = append(fields, fieldNewline)

	return &Reader{
		source: cfg.Source,
		rate:   cfg.TickRate,
		fields: fields,
	}, nil
}

// Attr is the stat result for the pseudo-file. Size is always zero:
// content is generated on demand, so the length is unknown until a
// session drains it.
type Attr struct {
	Mode fs.FileMode
	Size int64
}

// Stat reports the pseudo-file's fixed metadata.
func (r *Reader) Stat() Attr {
	return Attr{Mode: Mode, Size: 0}
}

// Open creates a Session positioned at the start of the report. The
// flag is an os.O_* access mode; anything other than read-only fails
// with ErrAccessDenied.
func (r *Reader) Open(flag int) (*Session, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_TRUNC) != 0 {
		return nil, ErrAccessDenied
	}
	return &Session{reader: r}, nil
}

// Session is the per-open-handle state of one report drain: a byte
// cursor into the virtual report plus the currently in-flight field.
//
// The scratch buffer holds the rendered bytes of the field the cursor
// sits in. It must survive across Read calls: a duration field's
// counter is reset the moment the field is rendered, so a partially
// delivered field cannot be re-rendered from the source — its
// remaining bytes come from scratch on the next call (and from the
// copied scratch in a duplicate).
type Session struct {
	reader *Reader

	cursor   int64
	cpu      int // CPU whose record is being produced
	field    int // index into reader.fields of the next field to render
	fieldLen int // rendered length of the in-flight field in scratch
	fieldOff int // bytes of the in-flight field already delivered
	scratch  [scratchLen]byte

	closed bool
}

// Offset returns the session's byte position within the virtual
// report: the total number of bytes delivered so far.
func (s *Session) Offset() int64 {
	return s.cursor
}

// Read fills p with the next window of the report. It returns fewer
// bytes than len(p) when the report's tail is reached, and (0, io.EOF)
// once the report is fully drained. A zero-length p returns (0, nil)
// with no side effects.
//
// Rendering a duration field samples and resets its counter exactly
// once, at generation time. A field is only rendered when the cursor
// reaches it, so counters ahead of the cursor stay untouched and
// counters behind it are never reset a second time.
func (s *Session) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	produced := 0
	for produced < len(p) {
		if s.fieldOff == s.fieldLen {
			if !s.nextField() {
				if produced == 0 {
					return 0, io.EOF
				}
				break
			}
		}
		n := copy(p[produced:], s.scratch[s.fieldOff:s.fieldLen])
		produced += n
		s.fieldOff += n
		s.cursor += int64(n)
	}
	return produced, nil
}

// nextField renders the next field of the report into scratch and
// advances the (cpu, field) position. It returns false when every
// CPU's record has been rendered.
func (s *Session) nextField() bool {
	if s.cpu >= s.reader.source.CPUCount() {
		return false
	}

	kind := s.reader.fields[s.field]
	buf := s.scratch[:0]
	switch kind {
	case fieldCPU:
		buf = strconv.AppendInt(buf, int64(s.cpu), 10)
	case fieldPreemption:
		ticks := s.reader.source.SampleAndResetPreemption(s.cpu)
		buf = appendDuration(buf, s.reader.rate, ticks)
	case fieldCritSection:
		ticks := s.reader.source.SampleAndResetCritSection(s.cpu)
		buf = appendDuration(buf, s.reader.rate, ticks)
	case fieldNewline:
		buf = append(buf, '\n')
	}
	s.fieldLen = len(buf)
	s.fieldOff = 0

	s.field++
	if s.field == len(s.reader.fields) {
		s.field = 0
		s.cpu++
	}
	return true
}

// appendDuration renders ",<sec>.<nsec>" with the nanosecond part
// zero-padded to nine digits.
func appendDuration(buf []byte, rate TickRate, ticks uint64) []byte {
	sec, nsec := rate.Split(ticks)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, sec, 10)
	buf = append(buf, '.')
	var digits [9]byte
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i] = byte('0' + nsec%10)
		nsec /= 10
	}
	return append(buf, digits[:]...)
}

// Write always fails with ErrNotSupported: the report is read-only.
// Defined so that a Session handed out as an os.File-like handle
// rejects misuse explicitly instead of silently discarding data.
func (s *Session) Write(p []byte) (int, error) {
	return 0, ErrNotSupported
}

// Dup creates an independent copy of the session: cursor, structural
// position, and scratch contents are copied verbatim, so both sides
// continue producing identical bytes from the current position. The
// copies share no mutable state afterwards.
func (s *Session) Dup() (*Session, error) {
	if s.closed {
		return nil, ErrClosed
	}
	dup := *s
	return &dup, nil
}

// Close releases the session. Further Read or Dup calls fail with
// ErrClosed. Closing never touches the source: any resets this
// session performed already happened inside Read.
func (s *Session) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
