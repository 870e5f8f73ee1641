package handlers

import (
	"fmt"
	"sync"

	"github.com/custor/portal-api/internal/auth"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding tags used by request structs.
// It must run before the first request is bound. Repeated calls are no-ops.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return auth.IsStrongPassword(fl.Field().String())
		})
	})
	return registerErr
}
