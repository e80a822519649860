package userservice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("MODERATOR")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRole_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{Role: RoleBanned})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"BANNED"}`, string(b))

	var out struct {
		Role Role `json:"role"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"role":"ROOT"}`), &out))

	_, err = json.Marshal(struct{ Role Role }{})
	assert.Error(t, err)
}

func TestRole_Scan(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan([]byte("ADMIN")))
	assert.Equal(t, RoleAdmin, r)

	assert.Error(t, r.Scan(42))
	assert.Error(t, r.Scan("owner"))

	_, err := Role(0).Value()
	assert.ErrorIs(t, err, ErrInvalidRole)
}
