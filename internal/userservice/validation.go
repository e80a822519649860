package userservice

import (
	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
)

func validateUserID(v *common.Validator, id uuid.UUID) {
	v.Check(id != uuid.Nil, "userId", "must be provided")
}

func validateRole(v *common.Validator, role string) Role {
	r, err := ParseRole(role)
	v.Check(err == nil, "role", "must be one of USER, ADMIN or BANNED")
	return r
}

const maxEventIDLength = 255

func validateSubscriptionEvent(v *common.Validator, ev SubscriptionEvent) {
	v.Check(ev.ID != "", "id", "must be provided")
	v.Check(len(ev.ID) <= maxEventIDLength, "id", "must not be more than 255 bytes long")
	validateUserID(v, ev.UserID)

	switch ev.Type {
	case SubscriptionActivated, SubscriptionRenewed:
		v.Check(!ev.CurrentPeriodEnd.IsZero(), "currentPeriodEnd", "must be provided")
		v.Check(ev.Tokens >= 0, "tokens", "must not be negative")
	case SubscriptionCanceled:
	default:
		v.AddError("type", "unknown event type")
	}
}
