package validator

import (
	"log"

	"studyhub_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует правила, основанные на statuses.go
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", stringRule(func(s string) bool { return models.UserRole(s).IsValid() }))
	mustRegister("is-plan-type", stringRule(func(s string) bool {
		return models.PlanType(s) == models.PlanSemester || models.PlanType(s) == models.PlanAnnual
	}))
	mustRegister("is-material-type", stringRule(func(s string) bool { return models.MaterialType(s).IsValid() }))
	mustRegister("is-upload-status", stringRule(func(s string) bool { return models.UploadStatus(s).IsValid() }))
}

// stringRule - пустые значения пропускаются, для них есть 'required'
func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return ok(value)
	}
}
