package controllers

import "github.com/zaqqye/salon_backoffice/internal/models"

var allowedRoles = map[string]struct{}{
	models.RoleAdmin:   {},
	models.RoleManager: {},
}

func IsValidRole(role string) bool {
	_, ok := allowedRoles[role]
	return ok
}
