package editor

import (
	"fmt"
	"time"
)

// IDSource hands out timestamp-based ids that never repeat within one editor,
// even when two are requested in the same millisecond.
type IDSource struct {
	now  func() time.Time
	last int64
}

// NewIDSource returns an IDSource reading the given clock (time.Now if nil).
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns "<prefix>-<millis>", bumped past the previous value if needed.
func (s *IDSource) Next(prefix string) string {
	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return fmt.Sprintf("%s-%d", prefix, ms)
}
