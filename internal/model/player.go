package model

// ConnID uniquely identifies a live client connection
type ConnID string

// Slot is a match's player index, fixed for the match's lifetime
type Slot int

const (
	SlotLeft  Slot = 0
	SlotRight Slot = 1
)

// Valid reports whether s names one of the two slots
func (s Slot) Valid() bool {
	return s == SlotLeft || s == SlotRight
}

// AssociationKind describes what a connection is currently attached to
type AssociationKind string

const (
	AssocNone  AssociationKind = "none"
	AssocLobby AssociationKind = "lobby"
	AssocMatch AssociationKind = "match"
)

// Association is a connection's current lobby or match attachment.
// A connection holds at most one at a time.
type Association struct {
	Kind   AssociationKind
	GameID GameID
	Slot   Slot // Only meaningful for AssocMatch
}

// NoAssociation is the zero attachment
var NoAssociation = Association{Kind: AssocNone}

// LobbyAssociation attaches a connection to a pending lobby
func LobbyAssociation(id GameID) Association {
	return Association{Kind: AssocLobby, GameID: id}
}

// MatchAssociation attaches a connection to a match slot
func MatchAssociation(id GameID, slot Slot) Association {
	return Association{Kind: AssocMatch, GameID: id, Slot: slot}
}

// IsNone reports whether the connection is unattached
func (a Association) IsNone() bool {
	return a.Kind == "" || a.Kind == AssocNone
}
