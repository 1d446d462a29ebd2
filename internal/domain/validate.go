package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var tconstPattern = regexp.MustCompile(`^tt\d+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("tconst", func(fl validator.FieldLevel) bool {
		return tconstPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register tconst validation: %v", err))
	}
	if err := v.RegisterValidation("pgtext", func(fl validator.FieldLevel) bool {
		return StorableText(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register pgtext validation: %v", err))
	}
	return v
}

// StorableText reports whether s is valid UTF-8 without NUL bytes, which Postgres TEXT rejects.
func StorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// newMovieRules lists the create-time constraints in the order they are reported.
type newMovieRules struct {
	Year    int     `validate:"min=1800,max=2100"`
	Rating  float64 `validate:"gte=0,lte=10"`
	Runtime int     `validate:"gt=0"`
	ID      string  `validate:"tconst"`
	Title   string  `validate:"required,pgtext"`
	Genres  string  `validate:"required,pgtext"`
}

var ruleFields = map[string]struct {
	field   string
	message string
}{
	"Year":    {"year", "Year must be between 1800 and 2100"},
	"Rating":  {"rating", "Rating must be between 0 and 10"},
	"Runtime": {"runtime", "Runtime must be a positive integer"},
	"ID":      {"tconst", `tconst must start with "tt" followed by digits`},
	"Title":   {"title", "Title must not be empty"},
	"Genres":  {"genre", "Genre must not be empty"},
}

// ValidateNewMovie checks the bounds and identifier format of a movie about to be created.
// The first violated rule is returned as a *ValidationError.
func ValidateNewMovie(m Movie) error {
	if m.Rating == nil {
		return NewValidationError("rating", "Missing required fields")
	}
	err := validate.Struct(newMovieRules{
		Year:    m.Year,
		Rating:  *m.Rating,
		Runtime: m.Runtime,
		ID:      m.ID,
		Title:   m.Title,
		Genres:  m.Genres,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	rule, ok := ruleFields[fieldErrs[0].StructField()]
	if !ok {
		return NewValidationError(fieldErrs[0].Field(), fieldErrs[0].Error())
	}
	if fieldErrs[0].Tag() == "pgtext" {
		return NewValidationError(rule.field, "Invalid value for field "+rule.field)
	}
	return NewValidationError(rule.field, rule.message)
}
