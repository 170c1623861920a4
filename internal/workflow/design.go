package workflow

import (
	"strings"

	"mehndi_backend/internal/models"
)

type DesignEvent string

const (
	DesignApprove DesignEvent = "approve"
	DesignReject  DesignEvent = "reject"
)

// NextDesignStatus: pending -> approved | rejected, только админ.
// approved и rejected конечны, повторная модерация требует новой записи.
func NextDesignStatus(current models.DesignStatus, event DesignEvent, actor Actor, reason string) (models.DesignStatus, error) {
	if actor != ActorAdmin {
		return current, &ActorError{Entity: "design", Event: string(event), Actor: actor}
	}
	if current != models.DesignStatusPending {
		return current, &TransitionError{Entity: "design", State: string(current), Event: string(event)}
	}

	switch event {
	case DesignApprove:
		return models.DesignStatusApproved, nil
	case DesignReject:
		if strings.TrimSpace(reason) == "" {
			return current, &PreconditionError{Entity: "design", Event: string(event), Field: "reason", Reason: "rejection reason is required"}
		}
		return models.DesignStatusRejected, nil
	default:
		return current, &TransitionError{Entity: "design", State: string(current), Event: string(event)}
	}
}
