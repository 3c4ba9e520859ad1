package validation

import (
	"regexp"

	"gearguard/internal/entities"
	"gearguard/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"request_stage":    isRequestStage,
		"request_type":     isRequestType,
		"request_priority": isRequestPriority,
		"equipment_status": isEquipmentStatus,
		"user_role":        isUserRole,
		"member_role":      isMemberRole,
		"uuid_str":         isUUID,
		"date_str":         isDate,
		"custom_email":     isGoodEmailFormat,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isRequestStage(fl validator.FieldLevel) bool {
	return entities.Stage(fl.Field().String()).Valid()
}

func isRequestType(fl validator.FieldLevel) bool {
	return entities.RequestType(fl.Field().String()).Valid()
}

func isRequestPriority(fl validator.FieldLevel) bool {
	return entities.Priority(fl.Field().String()).Valid()
}

func isEquipmentStatus(fl validator.FieldLevel) bool {
	return entities.EquipmentStatus(fl.Field().String()).Valid()
}

func isUserRole(fl validator.FieldLevel) bool {
	return entities.UserRole(fl.Field().String()).Valid()
}

func isMemberRole(fl validator.FieldLevel) bool {
	return entities.MemberRole(fl.Field().String()).Valid()
}

func isUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// isDate принимает "2006-01-02" или RFC3339.
func isDate(fl validator.FieldLevel) bool {
	_, err := utils.ParseDate(fl.Field().String())
	return err == nil
}
