package auth

import "errors"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const (
	PermMaterialsRead     = "materials:read"
	PermMaterialsUpload   = "materials:upload"
	PermMaterialsModerate = "materials:moderate"
	PermPaymentsRead      = "payments:read"
	PermUsersManage       = "users:manage"
	PermSubscriptionBuy   = "subscription:buy"
)

// Permissions - разрешения по ролям
var Permissions = map[string][]string{
	RoleStudent: {
		PermMaterialsRead,
		PermSubscriptionBuy,
	},
	RoleTeacher: {
		PermMaterialsRead,
		PermMaterialsUpload,
	},
	RoleAdmin: {
		PermMaterialsRead,
		PermMaterialsUpload,
		PermMaterialsModerate,
		PermPaymentsRead,
		PermUsersManage,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// BypassesSubscription - преподаватели и админы видят материалы без оплаты
func BypassesSubscription(role string) bool {
	return role == RoleTeacher || role == RoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return nil
	default:
		return errors.New("invalid role")
	}
}
