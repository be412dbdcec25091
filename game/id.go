package game

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDSize is the fixed width of an object id in records.
const IDSize = 24

// NameSize is the fixed width of owner and creep names in records.
const NameSize = 32

// ID is a stable object identifier: up to 24 one-byte characters, zero padded.
type ID [IDSize]byte

// ParseID pads s into an ID. s must be 1..24 bytes without NUL.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) == 0 || len(s) > IDSize {
		return id, fmt.Errorf("id %q: length %d not in 1..%d", s, len(s), IDSize)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return id, fmt.Errorf("id %q contains NUL", s)
	}
	copy(id[:], s)
	return id, nil
}

// NewID returns a fresh 24 hex digit id.
func NewID() ID {
	var id ID
	u := uuid.New()
	hex := strings.ReplaceAll(u.String(), "-", "")
	copy(id[:], hex[:IDSize])
	return id
}

func (id ID) String() string {
	if i := bytes.IndexByte(id[:], 0); i >= 0 {
		return string(id[:i])
	}
	return string(id[:])
}

func (id ID) IsZero() bool {
	return id == ID{}
}

// Name is a fixed-width one-byte-per-character string, zero padded.
type Name [NameSize]byte

// ParseName truncates nothing: names longer than NameSize are an error.
func ParseName(s string) (Name, error) {
	var n Name
	if len(s) > NameSize {
		return n, fmt.Errorf("name %q longer than %d bytes", s, NameSize)
	}
	copy(n[:], s)
	return n, nil
}

func (n Name) String() string {
	if i := bytes.IndexByte(n[:], 0); i >= 0 {
		return string(n[:i])
	}
	return string(n[:])
}

// Store is the record image of a resource store.
type Store struct {
	Energy   int32
	Capacity int32
}
