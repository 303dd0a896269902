package complaint

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/nacos/core"
)

var (
	categoryTag  = "category"
	categoryText = "unknown complaint category"

	statusTag  = "status"
	statusText = "unknown complaint status"

	levelText = "level must be one of 100, 200, 300, 400, 500 or 600"
)

// InitValidators registers the complaint validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		return IsCategory(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	core.RegisterCustomTranslation(validate, translator, "oneof", levelText, true)
}
