// Package ulid provides a type-safe wrapper around github.com/oklog/ulid/v2
// with database/json integration and prefixed identifiers.
//
// Prefixed ULIDs ("ses-01AN4Z07BY...") keep IDs lexicographically sortable
// by time while making the entity type readable in logs and shell output.
package ulid

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Common prefixes for different parts of the application
const (
	// PrefixSession marks chat session IDs
	PrefixSession = "ses"

	// PrefixMessage marks message IDs
	PrefixMessage = "msg"

	// PrefixSetting marks setting IDs
	PrefixSetting = "set"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
	// Nil is the zero ULID, useful for nil checks
	Nil = ULID{ulid.ULID{}, ""}
)

// ULID wraps ulid.ULID with an optional entity prefix.
type ULID struct {
	ulid.ULID
	prefix string
}

// Generate creates a new ULID with the current timestamp.
func Generate() ULID {
	return NewWithTime(time.Now())
}

// GenerateWithPrefix creates a new ULID with the current timestamp and the
// given entity prefix.
func GenerateWithPrefix(prefix string) ULID {
	id := NewWithTime(time.Now())
	id.prefix = prefix
	return id
}

// NewWithTime creates a new ULID with a specific timestamp.
func NewWithTime(t time.Time) ULID {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyLock.Unlock()
	return ULID{id, ""}
}

// Parse parses a plain or prefixed ULID string.
func Parse(id string) (ULID, error) {
	prefix, rawID, found := strings.Cut(id, PrefixSeparator)
	if !found {
		prefix, rawID = "", id
	}

	parsed, err := ulid.Parse(rawID)
	if err != nil {
		return ULID{}, err
	}
	return ULID{parsed, prefix}, nil
}

// Validate reports whether id is a valid plain or prefixed ULID.
func Validate(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// IsZero reports whether the ULID is the zero value.
func (u ULID) IsZero() bool {
	return u.ULID == ulid.ULID{}
}

// Prefix returns the entity prefix, or "" for plain ULIDs.
func (u ULID) Prefix() string {
	return u.prefix
}

// String returns "prefix-ulid", or the plain ULID when no prefix is set.
func (u ULID) String() string {
	if u.prefix != "" {
		return u.prefix + PrefixSeparator + u.ULID.String()
	}
	return u.ULID.String()
}

// RawString returns the ULID without its prefix.
func (u ULID) RawString() string {
	return u.ULID.String()
}

// Time returns the timestamp component of the ULID.
func (u ULID) Time() time.Time {
	return ulid.Time(u.ULID.Time())
}

// MarshalJSON implements json.Marshaler; ULIDs marshal as strings.
func (u ULID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *ULID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Value implements driver.Valuer; ULIDs are stored as strings.
func (u ULID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner for strings and byte slices.
func (u *ULID) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		return nil
	case string:
		parsed, err := Parse(src)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(src))
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	}
	return fmt.Errorf("cannot scan %T into ULID", src)
}

// Domain-specific ID generation

// SessionID generates a new ULID with the session prefix
func SessionID() string {
	return GenerateWithPrefix(PrefixSession).String()
}

// MessageID generates a new ULID with the message prefix
func MessageID() string {
	return GenerateWithPrefix(PrefixMessage).String()
}

// SettingID generates a new ULID with the setting prefix
func SettingID() string {
	return GenerateWithPrefix(PrefixSetting).String()
}
