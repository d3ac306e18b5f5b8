package domain

// PresenceEntry binds a connected username to its live connection.
type PresenceEntry struct {
	Username     string
	ConnectionID string
}

// PresenceChange is a committed presence transition waiting to be projected onto the Identity record.
type PresenceChange struct {
	Username string
	Online   bool
}
