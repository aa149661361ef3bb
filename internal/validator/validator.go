// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"rigforge/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("component_slot", validateComponentSlot)
		_ = v.RegisterValidation("part_category", validatePartCategory)
	}
}

func validateComponentSlot(fl validator.FieldLevel) bool {
	return models.ValidSlot(models.Slot(fl.Field().String()))
}

func validatePartCategory(fl validator.FieldLevel) bool {
	return models.ValidCategory(models.Category(fl.Field().String()))
}
