package workflow

import "mehndi_backend/internal/models"

// ApproveDesigner: unapproved -> approved, только админ и только для дизайнера.
// Повторное одобрение - no-op (changed == false).
func ApproveDesigner(user *models.User, actor Actor) (changed bool, err error) {
	if actor != ActorAdmin {
		return false, &ActorError{Entity: "user", Event: "approve", Actor: actor}
	}
	if !user.IsDesigner() {
		return false, &TransitionError{Entity: "user", State: string(user.Role), Event: "approve"}
	}
	return !user.IsApproved, nil
}
