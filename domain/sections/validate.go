package sections

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Problem describes one authoring error in a section list.
type Problem struct {
	Index     int    `json:"index"`
	SectionID string `json:"sectionId,omitempty"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

func (p Problem) String() string {
	where := fmt.Sprintf("section %d", p.Index)
	if p.SectionID != "" {
		where = fmt.Sprintf("section %d (%s)", p.Index, p.SectionID)
	}
	if p.Field != "" {
		return fmt.Sprintf("%s: %s %s", where, p.Field, p.Message)
	}
	return fmt.Sprintf("%s: %s", where, p.Message)
}

// ValidationError lists every problem found in a section list.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid sections: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(p Problem) {
	e.Problems = append(e.Problems, p)
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Validate checks a section list at the authoring boundary: ids present and
// unique, every section typed, and props satisfying their validate tags.
func Validate(list []Section) error {
	verr := &ValidationError{}
	seen := make(map[string]int, len(list))

	for i, s := range list {
		if s.ID == "" {
			verr.add(Problem{Index: i, Field: "id", Message: "is required"})
		} else if first, dup := seen[s.ID]; dup {
			verr.add(Problem{Index: i, SectionID: s.ID, Field: "id", Message: fmt.Sprintf("duplicates section %d", first)})
		} else {
			seen[s.ID] = i
		}

		switch p := s.Props.(type) {
		case nil:
			verr.add(Problem{Index: i, SectionID: s.ID, Field: "props", Message: "are required"})
		case Unrecognized:
			verr.add(Problem{Index: i, SectionID: s.ID, Field: "type", Message: fmt.Sprintf("%q is not a known section type", p.Tag)})
		case Malformed:
			verr.add(Problem{Index: i, SectionID: s.ID, Field: "props", Message: fmt.Sprintf("do not match %q: %v", p.Tag, p.Err)})
		default:
			for _, problem := range propsProblems(p) {
				problem.Index = i
				problem.SectionID = s.ID
				verr.add(problem)
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func propsProblems(p Props) []Problem {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Problem{{Field: "props", Message: err.Error()}}
	}

	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, Problem{
			Field:   "props." + fieldPath(fe),
			Message: describe(fe),
		})
	}
	return problems
}

// fieldPath drops the struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date formatted %s", fe.Param())
	default:
		return "is invalid"
	}
}

// AssignMissingIDs gives every section without an id one from gen. It
// modifies list in place and returns it.
func AssignMissingIDs(list []Section, gen func() string) []Section {
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = gen()
		}
	}
	return list
}
