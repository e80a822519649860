package userservice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/quillpress/internal/common"
)

func TestValidateRole(t *testing.T) {
	testCases := []struct {
		role  string
		valid bool
	}{
		{role: "USER", valid: true},
		{role: "ADMIN", valid: true},
		{role: "BANNED", valid: true},
		{role: "admin", valid: false},
		{role: "SUPERUSER", valid: false},
		{role: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.role, func(t *testing.T) {
			v := common.NewValidator()
			validateRole(v, tc.role)
			assert.Equal(t, tc.valid, v.Valid(), v.Errors)
		})
	}
}

func TestValidateSubscriptionEvent(t *testing.T) {
	id := uuid.New()

	testCases := []struct {
		name  string
		ev    SubscriptionEvent
		valid bool
	}{
		{
			name:  "activation",
			ev:    SubscriptionEvent{ID: "evt_1", Type: SubscriptionActivated, UserID: id, CurrentPeriodEnd: time.Now().Add(time.Hour), Tokens: 10},
			valid: true,
		},
		{
			name:  "renewal without period end",
			ev:    SubscriptionEvent{ID: "evt_1", Type: SubscriptionRenewed, UserID: id, Tokens: 10},
			valid: false,
		},
		{
			name:  "negative tokens",
			ev:    SubscriptionEvent{ID: "evt_1", Type: SubscriptionActivated, UserID: id, CurrentPeriodEnd: time.Now(), Tokens: -1},
			valid: false,
		},
		{
			name:  "cancellation",
			ev:    SubscriptionEvent{ID: "evt_1", Type: SubscriptionCanceled, UserID: id},
			valid: true,
		},
		{
			name:  "missing user",
			ev:    SubscriptionEvent{ID: "evt_1", Type: SubscriptionCanceled},
			valid: false,
		},
		{
			name:  "missing event id",
			ev:    SubscriptionEvent{Type: SubscriptionCanceled, UserID: id},
			valid: false,
		},
		{
			name:  "unknown type",
			ev:    SubscriptionEvent{ID: "evt_1", Type: "subscription.paused", UserID: id},
			valid: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateSubscriptionEvent(v, tc.ev)
			assert.Equal(t, tc.valid, v.Valid(), v.Errors)
		})
	}
}
