package rules

import "github.com/Jayce162/Petpals/internal/domain/enums"

// IsFirstMoveYours decides who is expected to open the conversation after a
// swipe match: the actor when the actor is female, or when both sides share
// a gender. Otherwise the counterpart moves first.
func IsFirstMoveYours(actor, candidate enums.Gender) bool {
	return actor == enums.GenderFemale || candidate == actor
}
