package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(signin{Email: "op@adenatrans.ru", Password: "secret1"}))

	errs := Validate(signin{Email: "nope", Password: "x"})
	assert.Equal(t, map[string]string{"email": "email", "password": "min"}, errs)

	errs = Validate(signin{})
	assert.Equal(t, "required", errs["email"])
	assert.Equal(t, "required", errs["password"])
}

func TestValidate_NotAStruct(t *testing.T) {
	errs := Validate(42)
	assert.Contains(t, errs, "_")
}
