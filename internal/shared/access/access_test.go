package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActorCanSee(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	seller := Actor{ProfileID: owner, Roles: []string{"seller"}}
	admin := Actor{ProfileID: other, Roles: []string{RoleAdmin}}

	assert.True(t, seller.CanSee(&owner))
	assert.False(t, seller.CanSee(&other))
	assert.False(t, seller.CanSee(nil))
	assert.True(t, admin.CanSee(&owner))
	assert.True(t, admin.CanSee(nil))
}

func TestActorOwnerFilter(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, &id, Actor{ProfileID: id}.OwnerFilter())
	assert.Nil(t, Actor{ProfileID: id, Roles: []string{RoleAdmin}}.OwnerFilter())
}
