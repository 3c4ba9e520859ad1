package controllers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "gearguard/pkg/errors"
)

// parseIDParam проверяет, что параметр пути - UUID.
func parseIDParam(ctx echo.Context, name string) (string, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err,
			map[string]interface{}{"param": name, "value": raw})
	}
	return id.String(), nil
}

// readRawBody читает тело целиком и возвращает его обратно в запрос,
// чтобы Bind мог прочитать его ещё раз. Сырое тело нужно PATCH-обработчикам,
// чтобы отличить отсутствующее поле от явного null.
func readRawBody(ctx echo.Context) ([]byte, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать тело запроса", err, nil)
	}
	ctx.Request().Body = io.NopCloser(bytes.NewBuffer(rawBody))
	return rawBody, nil
}

func bindError(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil)
}
