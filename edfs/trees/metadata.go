package trees

import "time"

// Metadata holds optional information captured about a file at build time.
type Metadata struct {
	modifiedAt  time.Time
	hasModified bool
}

// NewMetadata returns metadata recording the given modification time. A zero
// time records no modification time. The time is kept as seconds plus
// nanoseconds in UTC so that it survives code generation exactly, including
// outside the range of a single int64 nanosecond count.
func NewMetadata(modifiedAt time.Time) *Metadata {
	if modifiedAt.IsZero() {
		return &Metadata{}
	}
	return &Metadata{
		modifiedAt:  time.Unix(modifiedAt.Unix(), int64(modifiedAt.Nanosecond())).UTC(),
		hasModified: true,
	}
}

// EmptyMetadata returns metadata without a modification time, as captured
// when the platform or the stat call could not provide one.
func EmptyMetadata() *Metadata {
	return &Metadata{}
}

// ModifiedAt returns the modification time, if one was captured.
func (m *Metadata) ModifiedAt() (time.Time, bool) {
	if m == nil || !m.hasModified {
		return time.Time{}, false
	}
	return m.modifiedAt, true
}
