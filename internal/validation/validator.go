// Package validation runs declarative field rules against requests and
// reports every failure at once.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"example.com/runtracker/internal/civil"
)

// Config controls how failures are named and worded. It is read once when
// the Validator is built.
type Config struct {
	// FieldNameTag is the struct tag whose first element names a field in
	// failure keys. Fields without the tag fall back to their lower-camel
	// Go name.
	FieldNameTag string
	// Templates maps a rule tag to its message. {Name}, {Param} and {Value}
	// are substituted.
	Templates map[string]string
}

// DefaultConfig names fields after their JSON keys and uses fixed English
// messages.
func DefaultConfig() Config {
	return Config{
		FieldNameTag: "json",
		Templates: map[string]string{
			"required": "'{Name}' must not be empty.",
			"notempty": "'{Name}' must not be empty.",
			"gt":       "'{Name}' must be greater than '{Param}'.",
			"gte":      "'{Name}' must be greater than or equal to '{Param}'.",
			"lt":       "'{Name}' must be less than '{Param}'.",
			"lte":      "'{Name}' must be less than or equal to '{Param}'.",
		},
	}
}

const fallbackTemplate = "'{Name}' is not valid."

// Rule is a custom check registered under Tag.
type Rule struct {
	Tag     string
	Func    validator.Func
	Message string
}

// Validator checks structs tagged with `validate:"..."`.
type Validator struct {
	validate  *validator.Validate
	templates map[string]string
}

// New builds a Validator from cfg plus any custom rules.
func New(cfg Config, rules ...Rule) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	tag := cfg.FieldNameTag
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if tag != "" {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return lowerFirst(field.Name)
	})

	v.RegisterCustomTypeFunc(civilValue, civil.Date{}, civil.Timestamp{}, civil.Span(0))

	templates := make(map[string]string, len(cfg.Templates)+len(rules)+1)
	for _, rule := range append(builtinRules(), rules...) {
		if err := v.RegisterValidation(rule.Tag, rule.Func); err != nil {
			return nil, fmt.Errorf("register rule %q: %w", rule.Tag, err)
		}
		if rule.Message != "" {
			templates[rule.Tag] = rule.Message
		}
	}
	for tag, tmpl := range cfg.Templates {
		templates[tag] = tmpl
	}

	return &Validator{validate: v, templates: templates}, nil
}

// Validate runs every rule on s. It returns *Error when any rule fails and
// a plain error when s cannot be validated at all.
func (v *Validator) Validate(ctx context.Context, s any) error {
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), v.message(fe))
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	tmpl, ok := v.templates[fe.Tag()]
	if !ok {
		tmpl = fallbackTemplate
	}
	return strings.NewReplacer(
		"{Name}", displayName(fe.Field()),
		"{Param}", fe.Param(),
		"{Value}", fmt.Sprint(fe.Value()),
	).Replace(tmpl)
}

func builtinRules() []Rule {
	return []Rule{
		{Tag: "notempty", Func: notEmpty, Message: "'{Name}' must not be empty."},
	}
}

// notEmpty fails blank strings and empty collections.
func notEmpty(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() > 0
	default:
		return !field.IsZero()
	}
}

// civilValue exposes civil values to the standard time comparisons.
func civilValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case civil.Date:
		if v.IsZero() {
			return time.Time{}
		}
		return v.Time()
	case civil.Timestamp:
		return v.Time
	case civil.Span:
		return v.Duration()
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// displayName turns "distanceInMeters" or "activityIds[0]" into
// "Distance In Meters" / "Activity Ids".
func displayName(field string) string {
	if idx := strings.IndexByte(field, '['); idx >= 0 {
		field = field[:idx]
	}
	var b strings.Builder
	for i, r := range field {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
