package userservice

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Role is the closed set of authorization roles a user can hold.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
	RoleBanned
)

var ErrInvalidRole = errors.New("invalid role")

var roleNames = map[Role]string{
	RoleUser:   "USER",
	RoleAdmin:  "ADMIN",
	RoleBanned: "BANNED",
}

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleBanned}
}

func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return r.String(), nil
}
