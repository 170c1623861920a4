package services

import (
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/workflow"
)

// Actor - аутентифицированный инициатор команды
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) IsAdmin() bool    { return a.Role == models.UserRoleAdmin }
func (a Actor) IsDesigner() bool { return a.Role == models.UserRoleDesigner }
func (a Actor) IsCustomer() bool { return a.Role == models.UserRoleCustomer }

// Anonymous - зритель без токена
func (a Actor) Anonymous() bool { return a.ID == "" }

// roleActor - роль пользователя как инициатора перехода
func roleActor(role models.UserRole) workflow.Actor {
	switch role {
	case models.UserRoleAdmin:
		return workflow.ActorAdmin
	case models.UserRoleDesigner:
		return workflow.ActorDesigner
	}
	return workflow.ActorCustomer
}

// bookingActor - роль относительно конкретного бронирования: сторона сделки важнее роли аккаунта
func bookingActor(a Actor, b *models.Booking) (workflow.Actor, bool) {
	switch {
	case a.ID == b.DesignerID:
		return workflow.ActorDesigner, true
	case a.ID == b.CustomerID:
		return workflow.ActorCustomer, true
	case a.IsAdmin():
		return workflow.ActorAdmin, true
	}
	return "", false
}
