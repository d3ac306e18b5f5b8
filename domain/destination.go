package domain

import (
	"fmt"
	"strings"
)

// Destination names a logical channel messages are delivered to.
type Destination string

// Broadcast is the single room-wide destination every connection observes.
const Broadcast Destination = "/topic/public"

const (
	privatePrefix = "/user/"
	privateSuffix = "/queue/private"
)

// PrivateDestination is the per-username queue for direct messages.
func PrivateDestination(username string) Destination {
	return Destination(fmt.Sprintf("%s%s%s", privatePrefix, username, privateSuffix))
}

// Owner returns the username of a private destination.
func (d Destination) Owner() (string, bool) {
	s := string(d)
	if !strings.HasPrefix(s, privatePrefix) || !strings.HasSuffix(s, privateSuffix) {
		return "", false
	}
	owner := strings.TrimSuffix(strings.TrimPrefix(s, privatePrefix), privateSuffix)
	return owner, owner != ""
}

// Delivery is one copy of a message addressed to one destination.
type Delivery struct {
	Destination Destination `json:"destination"`
	Message     Message     `json:"message"`
}
