package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"example.com/runtracker/internal/civil"
)

type sample struct {
	UserID   int64      `json:"userId" validate:"gt=0"`
	Distance float64    `json:"distanceInMeters" validate:"gt=0"`
	Duration civil.Span `json:"duration" validate:"gte=30s"`
	Date     civil.Date `json:"date" validate:"required"`
	Location string     `json:"location" validate:"notempty"`
	Tags     []int64    `json:"tags" validate:"notempty,dive,gt=0"`
	Color    string     `json:"color" validate:"color"`
	Untagged string     `validate:"notempty"`
}

var colorRule = Rule{
	Tag: "color",
	Func: func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "red"
	},
	Message: "'{Name}' has a range of values which does not include '{Value}'.",
}

func validSample() sample {
	return sample{
		UserID:   1,
		Distance: 5000,
		Duration: civil.Span(30 * time.Minute),
		Date:     civil.Date{Year: 2024, Month: time.January, Day: 1},
		Location: "Park",
		Tags:     []int64{1},
		Color:    "red",
		Untagged: "x",
	}
}

func TestValidatePasses(t *testing.T) {
	v, err := New(DefaultConfig(), colorRule)
	require.NoError(t, err)

	require.NoError(t, v.Validate(context.Background(), validSample()))
}

func TestValidateCollectsEveryFailure(t *testing.T) {
	v, err := New(DefaultConfig(), colorRule)
	require.NoError(t, err)

	s := sample{
		Duration: civil.Span(29 * time.Second),
		Location: "   ",
		Color:    "blue",
	}
	err = v.Validate(context.Background(), s)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, map[string][]string{
		"userId":           {"'User Id' must be greater than '0'."},
		"distanceInMeters": {"'Distance In Meters' must be greater than '0'."},
		"duration":         {"'Duration' must be greater than or equal to '30s'."},
		"date":             {"'Date' must not be empty."},
		"location":         {"'Location' must not be empty."},
		"tags":             {"'Tags' must not be empty."},
		"color":            {"'Color' has a range of values which does not include 'blue'."},
		"untagged":         {"'Untagged' must not be empty."},
	}, verr.Failures)
}

func TestValidateDivesIntoCollections(t *testing.T) {
	v, err := New(DefaultConfig(), colorRule)
	require.NoError(t, err)

	s := validSample()
	s.Tags = []int64{4, 0}

	var verr *Error
	require.ErrorAs(t, v.Validate(context.Background(), s), &verr)
	require.Equal(t, []string{"'Tags' must be greater than '0'."}, verr.Failures["tags[1]"])
	require.Len(t, verr.Failures, 1)
}

func TestConfigTemplatesOverrideMessages(t *testing.T) {
	cfg := Config{
		FieldNameTag: "json",
		Templates:    map[string]string{"gt": "{Name} too small", "color": "bad {Name}"},
	}
	v, err := New(cfg, colorRule)
	require.NoError(t, err)

	s := validSample()
	s.UserID = 0
	s.Color = "green"
	s.Location = ""

	var verr *Error
	require.ErrorAs(t, v.Validate(context.Background(), s), &verr)
	require.Equal(t, []string{"User Id too small"}, verr.Failures["userId"])
	require.Equal(t, []string{"bad Color"}, verr.Failures["color"])
	require.Equal(t, []string{"'Location' must not be empty."}, verr.Failures["location"])
}

func TestConfigWithoutFieldTagUsesGoNames(t *testing.T) {
	v, err := New(Config{})
	require.NoError(t, err)

	type plain struct {
		UserID int64 `json:"user" validate:"gt=0"`
	}
	var verr *Error
	require.ErrorAs(t, v.Validate(context.Background(), plain{}), &verr)
	require.Contains(t, verr.Failures, "userID")
}

func TestValidateRejectsNonStruct(t *testing.T) {
	v, err := New(DefaultConfig())
	require.NoError(t, err)

	err = v.Validate(context.Background(), 42)
	require.Error(t, err)
	var verr *Error
	require.False(t, errors.As(err, &verr))
}

func TestErrorString(t *testing.T) {
	e := NewError("b", "second")
	e.Add("a", "first")
	e.Add("a", "again")
	require.Equal(t, "validation failed: a: first again; b: second", e.Error())
}
