package workflow

import (
	"strings"
	"time"

	"mehndi_backend/internal/models"
)

type BookingEvent string

const (
	BookingConfirm  BookingEvent = "confirm"
	BookingCancel   BookingEvent = "cancel"
	BookingComplete BookingEvent = "complete"
)

type bookingEdge struct {
	from  models.BookingStatus
	event BookingEvent
}

type bookingRule struct {
	to     models.BookingStatus
	actors []Actor
}

// Таблица переходов бронирования
var bookingTable = map[bookingEdge]bookingRule{
	{models.BookingStatusPending, BookingConfirm}:    {models.BookingStatusConfirmed, []Actor{ActorDesigner}},
	{models.BookingStatusPending, BookingCancel}:     {models.BookingStatusCancelled, []Actor{ActorCustomer, ActorDesigner}},
	{models.BookingStatusConfirmed, BookingComplete}: {models.BookingStatusCompleted, []Actor{ActorDesigner, ActorAdmin}},
	{models.BookingStatusConfirmed, BookingCancel}:   {models.BookingStatusCancelled, []Actor{ActorCustomer, ActorDesigner}},
}

// BookingCommand - запрошенное событие с контекстом
type BookingCommand struct {
	Event    BookingEvent
	Actor    Actor
	Reason   string
	StartsAt time.Time
	Now      time.Time
}

// NextBookingStatus валидирует (текущее состояние, событие, роль) и возвращает новое состояние.
func NextBookingStatus(current models.BookingStatus, cmd BookingCommand) (models.BookingStatus, error) {
	rule, ok := bookingTable[bookingEdge{current, cmd.Event}]
	if !ok {
		return current, &TransitionError{Entity: "booking", State: string(current), Event: string(cmd.Event)}
	}
	if !containsActor(rule.actors, cmd.Actor) {
		return current, &ActorError{Entity: "booking", Event: string(cmd.Event), Actor: cmd.Actor}
	}

	switch cmd.Event {
	case BookingCancel:
		if strings.TrimSpace(cmd.Reason) == "" {
			return current, &PreconditionError{Entity: "booking", Event: string(cmd.Event), Field: "reason", Reason: "cancellation reason is required"}
		}
	case BookingComplete:
		if cmd.Now.Before(cmd.StartsAt) {
			return current, &PreconditionError{Entity: "booking", Event: string(cmd.Event), Field: "status", Reason: "booking date has not passed yet"}
		}
	}
	return rule.to, nil
}

// BookingEventFor переводит целевой статус из запроса в событие.
// pending недостижим через updateStatus.
func BookingEventFor(target models.BookingStatus) (BookingEvent, bool) {
	switch target {
	case models.BookingStatusConfirmed:
		return BookingConfirm, true
	case models.BookingStatusCancelled:
		return BookingCancel, true
	case models.BookingStatusCompleted:
		return BookingComplete, true
	}
	return "", false
}

func containsActor(actors []Actor, a Actor) bool {
	for _, x := range actors {
		if x == a {
			return true
		}
	}
	return false
}
