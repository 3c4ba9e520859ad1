package utils

import (
	"context"

	"gearguard/pkg/contextkeys"
	apperrors "gearguard/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return role, nil
}

// OptionalUserID возвращает nil, если запрос анонимный (например, задача планировщика).
func OptionalUserID(ctx context.Context) *string {
	userID, err := GetUserIDFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &userID
}
