package model

// TurnState is the progress of the single chat turn a user may have in flight.
type TurnState string

const (
	TurnIdle               TurnState = "idle"
	TurnSendingUser        TurnState = "sending_user"
	TurnAwaitingCompletion TurnState = "awaiting_completion"
	TurnSendingAssistant   TurnState = "sending_assistant"
)

func (s TurnState) Valid() bool {
	switch s {
	case TurnIdle, TurnSendingUser, TurnAwaitingCompletion, TurnSendingAssistant:
		return true
	}
	return false
}
