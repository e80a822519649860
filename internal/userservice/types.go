package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
)

const (
	// UserCacheTime bounds how long a role change can take to reach the authentication layer
	// when the change bypasses UpdateRole.
	UserCacheTime time.Duration = time.Minute
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	c      *common.Cache
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"-"`
}

// UserSummary is the projection returned by the admin role update.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Access is the Access Gate's answer for one user.
type Access struct {
	HasAccess bool `json:"hasAccess"`
	Tokens    int  `json:"tokens"`
}

type SubscriptionEventType string

const (
	SubscriptionActivated SubscriptionEventType = "subscription.activated"
	SubscriptionRenewed   SubscriptionEventType = "subscription.renewed"
	SubscriptionCanceled  SubscriptionEventType = "subscription.canceled"
)

// SubscriptionEvent is the body of a billing provider webhook. ID is the provider's event
// id and is applied at most once.
type SubscriptionEvent struct {
	ID               string                `json:"id"`
	Type             SubscriptionEventType `json:"type"`
	UserID           uuid.UUID             `json:"userId"`
	CurrentPeriodEnd time.Time             `json:"currentPeriodEnd"`
	Tokens           int                   `json:"tokens"`
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
