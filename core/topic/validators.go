package topic

import (
	"github.com/go-playground/validator/v10"

	"github.com/uzimahq/uzima/core"
)

var (
	pdcaStepTag  = "pdcastep"
	pdcaStepText = "must be one of plan, do, check or act"
)

func init() {
	_ = core.Validate.RegisterValidation(pdcaStepTag, pdcaStepValidation)
	core.RegisterCustomTranslation(pdcaStepTag, pdcaStepText)
}

// pdcaStepValidation checks that the provided step is a PDCA step.
func pdcaStepValidation(fl validator.FieldLevel) bool {
	for _, step := range Steps {
		if fl.Field().String() == step {
			return true
		}
	}
	return false
}
