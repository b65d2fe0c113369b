package domain

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every question in the bank. Empty chapters are allowed here;
// they are rejected when a session is started on them.
func (b QuestionBank) Validate() error {
	for _, ch := range b.Chapters {
		if ch.Name == "" {
			return fmt.Errorf("chapter with empty name")
		}
		for i, q := range ch.Questions {
			if err := validate.Struct(q); err != nil {
				return fmt.Errorf("chapter %q question %d: %w", ch.Name, i+1, err)
			}
			if !slices.Contains(q.Options, q.CorrectAnswer) {
				return fmt.Errorf("chapter %q question %d: answer %q is not one of the options", ch.Name, i+1, q.CorrectAnswer)
			}
		}
	}
	return nil
}
