package workflow

import (
	"testing"

	"mehndi_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNextDesignStatus(t *testing.T) {
	next, err := NextDesignStatus(models.DesignStatusPending, DesignApprove, ActorAdmin, "")
	assert.NoError(t, err)
	assert.Equal(t, models.DesignStatusApproved, next)

	next, err = NextDesignStatus(models.DesignStatusPending, DesignReject, ActorAdmin, "blurry photo")
	assert.NoError(t, err)
	assert.Equal(t, models.DesignStatusRejected, next)
}

func TestNextDesignStatus_RejectNeedsReason(t *testing.T) {
	next, err := NextDesignStatus(models.DesignStatusPending, DesignReject, ActorAdmin, "")
	var pe *PreconditionError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "reason", pe.Field)
	assert.Equal(t, models.DesignStatusPending, next)
}

func TestNextDesignStatus_OnlyFromPending(t *testing.T) {
	for _, from := range []models.DesignStatus{models.DesignStatusApproved, models.DesignStatusRejected} {
		for _, ev := range []DesignEvent{DesignApprove, DesignReject} {
			next, err := NextDesignStatus(from, ev, ActorAdmin, "reason")
			var te *TransitionError
			assert.ErrorAs(t, err, &te)
			assert.Equal(t, from, next)
		}
	}
}

func TestNextDesignStatus_AdminOnly(t *testing.T) {
	_, err := NextDesignStatus(models.DesignStatusPending, DesignApprove, ActorDesigner, "")
	var ae *ActorError
	assert.ErrorAs(t, err, &ae)
}

func TestApproveDesigner(t *testing.T) {
	designer := &models.User{Role: models.UserRoleDesigner}
	changed, err := ApproveDesigner(designer, ActorAdmin)
	assert.NoError(t, err)
	assert.True(t, changed)

	designer.IsApproved = true
	changed, err = ApproveDesigner(designer, ActorAdmin)
	assert.NoError(t, err)
	assert.False(t, changed, "second approval is a no-op")

	_, err = ApproveDesigner(&models.User{Role: models.UserRoleCustomer}, ActorAdmin)
	var te *TransitionError
	assert.ErrorAs(t, err, &te)

	_, err = ApproveDesigner(&models.User{Role: models.UserRoleDesigner}, ActorDesigner)
	var ae *ActorError
	assert.ErrorAs(t, err, &ae)
}
