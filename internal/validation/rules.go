// Package validation evaluates declarative field constraints and collects human-readable failures.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Rule identifies a single validation rule.
type Rule string

const (
	RuleRequired          Rule = "required"
	RuleMaxLength         Rule = "maxLength"
	RuleMinLength         Rule = "minLength"
	RuleEmail             Rule = "email"
	RuleDate              Rule = "date"
	RuleOnlyNumbers       Rule = "onlyNumbers"
	RuleOnlyLetters       Rule = "onlyLetters"
	RuleNumbersAndLetters Rule = "numbersAndLetters"
	RuleUnique            Rule = "unique"
)

// Outcome is the result of evaluating one rule against one value.
type Outcome struct {
	Rule    Rule
	Valid   bool
	Message string
}

const dateLayout = "2006-01-02"

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	charsetOnce     sync.Once
	charsetValidate *validator.Validate
)

// charsetValidator returns the shared validator used for the ASCII charset rules.
func charsetValidator() *validator.Validate {
	charsetOnce.Do(func() {
		charsetValidate = validator.New(validator.WithRequiredStructEnabled())
	})
	return charsetValidate
}

// Required passes when the value is non-blank after trimming whitespace.
func Required(value, field string) Outcome {
	return Outcome{
		Rule:    RuleRequired,
		Valid:   strings.TrimSpace(value) != "",
		Message: field + " is required",
	}
}

// MaxLength fails on an empty value as well as on one longer than n characters.
func MaxLength(value string, n int, field string) Outcome {
	return Outcome{
		Rule:    RuleMaxLength,
		Valid:   value != "" && utf8.RuneCountInString(value) <= n,
		Message: fmt.Sprintf("%s should be at most %d characters long", field, n),
	}
}

// MinLength fails on an empty value as well as on one shorter than n characters.
func MinLength(value string, n int, field string) Outcome {
	return Outcome{
		Rule:    RuleMinLength,
		Valid:   value != "" && utf8.RuneCountInString(value) >= n,
		Message: fmt.Sprintf("%s should be at least %d characters long", field, n),
	}
}

// IsEmail checks the basic local@domain.tld shape. It is not an RFC 5322 parser.
func IsEmail(value, _ string) Outcome {
	return Outcome{
		Rule:    RuleEmail,
		Valid:   emailRegex.MatchString(value),
		Message: "Please enter a valid email address",
	}
}

// IsDate requires the literal YYYY-MM-DD shape and a real calendar date.
func IsDate(value, field string) Outcome {
	if !dateRegex.MatchString(value) {
		return Outcome{
			Rule:    RuleDate,
			Message: field + " should be a valid date in the format YYYY-MM-DD",
		}
	}

	if _, err := time.Parse(dateLayout, value); err != nil {
		return Outcome{
			Rule:    RuleDate,
			Message: field + " contains an invalid date",
		}
	}

	return Outcome{Rule: RuleDate, Valid: true, Message: field + " is a valid date"}
}

func IsOnlyNumbers(value, field string) Outcome {
	return charset(RuleOnlyNumbers, "number", value, field+" should contain only numbers")
}

func IsOnlyLetters(value, field string) Outcome {
	return charset(RuleOnlyLetters, "alpha", value, field+" should contain only letters")
}

func IsNumbersAndLetters(value, field string) Outcome {
	return charset(RuleNumbersAndLetters, "alphanum", value, field+" should contain only numbers and letters")
}

func charset(rule Rule, tag, value, message string) Outcome {
	return Outcome{
		Rule:    rule,
		Valid:   charsetValidator().Var(value, tag) == nil,
		Message: message,
	}
}
