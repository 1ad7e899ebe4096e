package events

import "github.com/google/uuid"

type QuestionType string

const (
	FREE_TEXT       QuestionType = "FREE_TEXT"
	SINGLE_CHOICE   QuestionType = "SINGLE_CHOICE"
	MULTIPLE_CHOICE QuestionType = "MULTIPLE_CHOICE"
)

type Question struct {
	ID       uuid.UUID
	Text     string
	Type     QuestionType
	Required bool
	// Attributes carries type specific settings, e.g. the serialized option
	// list for choice questions. Opaque to this service.
	Attributes *string
}
