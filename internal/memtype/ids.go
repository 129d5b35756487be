package memtype

import "github.com/google/uuid"

// MemoryId opaquely and globally identifies a MemoryNote. It is never
// reused; equality and hashing are purely structural over the UUID, which
// is safe because no two distinct logical memories ever share one.
type MemoryId uuid.UUID

// LinkId opaquely identifies a MemoryLink, independent of its endpoints.
type LinkId uuid.UUID

// NewMemoryId allocates a fresh, globally unique MemoryId.
func NewMemoryId() MemoryId { return MemoryId(uuid.New()) }

// NewLinkId allocates a fresh, globally unique LinkId.
func NewLinkId() LinkId { return LinkId(uuid.New()) }

func (id MemoryId) String() string { return uuid.UUID(id).String() }
func (id LinkId) String() string   { return uuid.UUID(id).String() }

// ParseMemoryId parses the canonical UUID string form of a MemoryId.
func ParseMemoryId(s string) (MemoryId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MemoryId{}, err
	}
	return MemoryId(u), nil
}

// ParseLinkId parses the canonical UUID string form of a LinkId.
func ParseLinkId(s string) (LinkId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return LinkId{}, err
	}
	return LinkId(u), nil
}

// Ids serialize as canonical UUID strings, matching their String form, so
// JSON payloads persisted by the store adapters stay human-readable.

func (id MemoryId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *MemoryId) UnmarshalText(b []byte) error {
	parsed, err := ParseMemoryId(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id LinkId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *LinkId) UnmarshalText(b []byte) error {
	parsed, err := ParseLinkId(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZero reports whether id is the zero-value MemoryId (never allocated).
func (id MemoryId) IsZero() bool { return id == MemoryId{} }
