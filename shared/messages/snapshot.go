package messages

// EntitySnapshot carries one replicated entity's state record. Clients send it
// for the entity they own; the coordinator relays it to the other members of
// the room with OwnerID filled in from the sending connection.
type EntitySnapshot struct {
	EntityID string
	OwnerID  string
	Record   []byte // Fixed-order (isActive, health) record, see package replication
}
