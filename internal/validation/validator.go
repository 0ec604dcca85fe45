package validation

import "context"

// Constraints enumerates the rules a field is checked against. Zero values disable a rule.
type Constraints struct {
	MinLength int
	MaxLength int

	Required          bool
	Email             bool
	Date              bool
	OnlyNumbers       bool
	OnlyLetters       bool
	NumbersAndLetters bool

	// Unique is only checked when Scope is set.
	Unique bool
	Scope  UniquenessScope
}

// Field is one named input value together with its constraints.
type Field struct {
	Name  string
	Value string
	Constraints
}

// Validate checks every field in order and returns the failure messages.
// Within a field rules run as min length, max length, required, date, email,
// the charset rules, then uniqueness. Uniqueness lookups run one field at a time.
// An empty result means the input is valid.
func Validate(ctx context.Context, fields ...Field) []string {
	messages := make([]string, 0)

	for _, f := range fields {
		var outcomes []Outcome

		if f.MinLength > 0 {
			outcomes = append(outcomes, MinLength(f.Value, f.MinLength, f.Name))
		}
		if f.MaxLength > 0 {
			outcomes = append(outcomes, MaxLength(f.Value, f.MaxLength, f.Name))
		}
		if f.Required {
			outcomes = append(outcomes, Required(f.Value, f.Name))
		}
		if f.Date {
			outcomes = append(outcomes, IsDate(f.Value, f.Name))
		}
		if f.Email {
			outcomes = append(outcomes, IsEmail(f.Value, f.Name))
		}
		if f.OnlyNumbers {
			outcomes = append(outcomes, IsOnlyNumbers(f.Value, f.Name))
		}
		if f.OnlyLetters {
			outcomes = append(outcomes, IsOnlyLetters(f.Value, f.Name))
		}
		if f.NumbersAndLetters {
			outcomes = append(outcomes, IsNumbersAndLetters(f.Value, f.Name))
		}
		if f.Unique && f.Scope != nil {
			outcomes = append(outcomes, Unique(ctx, f.Value, f.Name, f.Scope))
		}

		for _, o := range outcomes {
			if !o.Valid {
				messages = append(messages, o.Message)
			}
		}
	}

	return messages
}
