package contentservice

import "errors"

var ErrNotOwner = errors.New("actor does not own this resource")

// authorize reports whether the actor may mutate a resource created by
// ownerID. Ownership is a plain identity check: there are no roles and no
// delegation. Read operations never pass through here.
func authorize(actorID, ownerID int) bool {
	return actorID == ownerID
}
