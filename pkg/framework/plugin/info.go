package plugin

import "github.com/google/uuid"

// namespace for voice UIDs
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/audiospace/atomspace"))

// Info contains voice kind metadata
type Info struct {
	ID       string // Unique identifier (e.g., "atomspace.womp")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // e.g. "Instrument", "Utility"
}

// UID derives a stable 16-byte identifier from the string ID
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uidNamespace, []byte(i.ID))
}

// String returns "Name (ID)"
func (i Info) String() string {
	return i.Name + " (" + i.ID + ")"
}
