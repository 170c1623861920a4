// Package workflow содержит конечные автоматы сущностей маркетплейса:
// модерация дизайнов, жизненный цикл бронирований, одобрение дизайнеров
// и модерация отзывов. Каждый переход проверяется по текущему состоянию
// и роли инициатора, целевое состояние никогда не берется от клиента.
package workflow

import "fmt"

// Actor - роль инициатора перехода относительно сущности
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorDesigner Actor = "designer"
	ActorAdmin    Actor = "admin"
	ActorSystem   Actor = "system"
)

// TransitionError - событие недопустимо в текущем состоянии
type TransitionError struct {
	Entity string
	State  string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: event %q is not allowed in state %q", e.Entity, e.Event, e.State)
}

// ActorError - у инициатора нет права на событие
type ActorError struct {
	Entity string
	Event  string
	Actor  Actor
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("%s: %s may not perform %q", e.Entity, e.Actor, e.Event)
}

// PreconditionError - событие допустимо, но не выполнено условие (причина, время)
type PreconditionError struct {
	Entity string
	Event  string
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Entity, e.Event, e.Reason)
}
