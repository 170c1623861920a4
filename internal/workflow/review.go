package workflow

import "mehndi_backend/internal/models"

// ReviewState - закрытое множество состояний модерации отзыва.
// Хранится парой (is_approved, is_flagged) для совместимости API.
// Оси независимы: flag/unflag не меняют одобрение, reject не снимает пометку.
type ReviewState string

const (
	ReviewVisible         ReviewState = "visible"          // approved, не помечен
	ReviewFlagged         ReviewState = "flagged"          // approved, в очереди модерации
	ReviewRejected        ReviewState = "rejected"         // исключен из рейтинга
	ReviewRejectedFlagged ReviewState = "rejected_flagged" // исключен и остается в очереди
)

type ReviewEvent string

const (
	ReviewFlag    ReviewEvent = "flag"
	ReviewReport  ReviewEvent = "report"
	ReviewUnflag  ReviewEvent = "unflag"
	ReviewApprove ReviewEvent = "approve"
	ReviewReject  ReviewEvent = "reject"
)

type reviewEdge struct {
	from  ReviewState
	event ReviewEvent
}

// approve снимает пометку: разобранная жалоба уходит из очереди
var reviewTable = map[reviewEdge]ReviewState{
	{ReviewVisible, ReviewFlag}:            ReviewFlagged,
	{ReviewVisible, ReviewReport}:          ReviewFlagged,
	{ReviewRejected, ReviewFlag}:           ReviewRejectedFlagged,
	{ReviewRejected, ReviewReport}:         ReviewRejectedFlagged,
	{ReviewFlagged, ReviewUnflag}:          ReviewVisible,
	{ReviewRejectedFlagged, ReviewUnflag}:  ReviewRejected,
	{ReviewFlagged, ReviewApprove}:         ReviewVisible,
	{ReviewRejected, ReviewApprove}:        ReviewVisible,
	{ReviewRejectedFlagged, ReviewApprove}: ReviewVisible,
	{ReviewVisible, ReviewReject}:          ReviewRejected,
	{ReviewFlagged, ReviewReject}:          ReviewRejectedFlagged,
}

// ReviewStateOf выводит состояние из флагов модели
func ReviewStateOf(r *models.Review) ReviewState {
	switch {
	case !r.IsApproved && r.IsFlagged:
		return ReviewRejectedFlagged
	case !r.IsApproved:
		return ReviewRejected
	case r.IsFlagged:
		return ReviewFlagged
	default:
		return ReviewVisible
	}
}

// Approved - учитывается ли отзыв в рейтинге
func (s ReviewState) Approved() bool { return s == ReviewVisible || s == ReviewFlagged }

// Flagged - находится ли отзыв в очереди модерации
func (s ReviewState) Flagged() bool { return s == ReviewFlagged || s == ReviewRejectedFlagged }

// NextReviewState: report доступен дизайнеру, остальные события - админу.
func NextReviewState(current ReviewState, event ReviewEvent, actor Actor) (ReviewState, error) {
	switch event {
	case ReviewReport:
		if actor != ActorDesigner {
			return current, &ActorError{Entity: "review", Event: string(event), Actor: actor}
		}
	default:
		if actor != ActorAdmin {
			return current, &ActorError{Entity: "review", Event: string(event), Actor: actor}
		}
	}

	next, ok := reviewTable[reviewEdge{current, event}]
	if !ok {
		return current, &TransitionError{Entity: "review", State: string(current), Event: string(event)}
	}
	return next, nil
}

// AffectsRating - переход меняет участие отзыва в среднем рейтинге (только ось одобрения)
func AffectsRating(from, to ReviewState) bool {
	return from.Approved() != to.Approved()
}

// Apply записывает состояние обратно во флаги модели
func (s ReviewState) Apply(r *models.Review) {
	r.IsApproved = s.Approved()
	r.IsFlagged = s.Flagged()
}
