package service

import "github.com/google/uuid"

// Posture selects how the ownership check treats anonymous actors.
type Posture int

const (
	// PostureStrict rejects anonymous actors on owned resources.
	PostureStrict Posture = iota
	// PosturePermissive lets anonymous actors through; used for the
	// pre-registration appeal creation/update flow, where the claimant has
	// no account yet.
	PosturePermissive
)

// isAuthorized is the single ownership predicate every call site uses, so
// the posture can change without touching the call sites.
//
// Rules:
//   - an unowned resource (ownerID nil) is open to any actor;
//   - an anonymous actor (actorID nil) passes only under the permissive
//     posture;
//   - otherwise the actor must be the owner.
func isAuthorized(posture Posture, actorID, ownerID *uuid.UUID) bool {
	if ownerID == nil {
		return true
	}
	if actorID == nil {
		return posture == PosturePermissive
	}
	return *actorID == *ownerID
}
