package attendance

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var validityTag = "validityminutes"

// InitValidators registers attendance-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator, choices []int) {
	_ = validate.RegisterValidation(validityTag, validityValidation(choices))
	core.RegisterCustomTranslation(
		validate, translator, validityTag,
		fmt.Sprintf("validity must be one of %v minutes", choices),
	)
}

func validityValidation(choices []int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		m := int(fl.Field().Int())
		for _, c := range choices {
			if m == c {
				return true
			}
		}
		return false
	}
}
