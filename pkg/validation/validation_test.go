package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct {
	Login string `json:"login" validate:"required"`
}

type sample struct {
	Title  string `json:"title" validate:"required"`
	State  string `json:"state,omitempty" validate:"omitempty,oneof=open closed"`
	Owner  owner  `json:"owner"`
	Port   int    `yaml:"port" validate:"gte=0,lte=65535"`
	Hidden string `json:"-" validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Title: "t", Owner: owner{Login: "alice"}, Hidden: "x"})
	assert.NoError(t, err)
}

func TestStruct_Messages(t *testing.T) {
	err := Struct(sample{State: "merged", Port: 70000, Hidden: "x"})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title", "state", "owner.login", "port"}, verr.Fields())

	assert.Equal(t,
		"field 'title' is required; "+
			"field 'state' must be one of: open closed; "+
			"field 'owner.login' is required; "+
			"field 'port' must be less than or equal to 65535",
		err.Error())

	var raw validator.ValidationErrors
	assert.True(t, errors.As(err, &raw))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "boom", FormatError(errors.New("boom")))

	var v struct{ N int }
	err := json.Unmarshal([]byte(`{"N":"x"}`), &v)
	assert.Equal(t, "field 'N' should be int", FormatError(err))

	err = json.Unmarshal([]byte(`{`), &v)
	assert.NotEmpty(t, FormatError(err))
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
