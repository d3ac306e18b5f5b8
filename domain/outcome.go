package domain

// Outcome tells the caller of a routing operation what happened to its message.
type Outcome int

const (
	Delivered Outcome = iota
	DroppedSenderOffline
	DroppedReceiverOffline
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case DroppedSenderOffline:
		return "dropped-sender-offline"
	case DroppedReceiverOffline:
		return "dropped-receiver-offline"
	default:
		return "unknown"
	}
}

func (o Outcome) Dropped() bool {
	return o != Delivered
}
