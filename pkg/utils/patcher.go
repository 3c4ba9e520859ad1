package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

var (
	stringPtrType = reflect.TypeOf(new(string))
	timeType      = reflect.TypeOf(time.Time{})
	timePtrType   = reflect.TypeOf(new(time.Time))
	float64PtrTyp = reflect.TypeOf(new(float64))
	intPtrType    = reflect.TypeOf(new(int))
	boolPtrType   = reflect.TypeOf(new(bool))
)

// ApplyPatchFinal переносит в entity только те поля patchDTO, которые
// реально пришли в теле запроса. Поля сопоставляются по имени, явный
// null в JSON обнуляет поле сущности. Строка в поле времени разбирается
// через ParseDate.
func ApplyPatchFinal(entity interface{}, patchDTO interface{}, rawRequestBody []byte) error {
	var sentFields map[string]interface{}
	if err := json.Unmarshal(rawRequestBody, &sentFields); err != nil {
		return err
	}

	entityValue := reflect.ValueOf(entity).Elem()
	patchDTOValue := reflect.ValueOf(patchDTO)
	if patchDTOValue.Kind() == reflect.Ptr {
		patchDTOValue = patchDTOValue.Elem()
	}

	for i := 0; i < patchDTOValue.NumField(); i++ {
		patchField := patchDTOValue.Field(i)
		patchFieldType := patchDTOValue.Type().Field(i)
		jsonFieldName := strings.Split(patchFieldType.Tag.Get("json"), ",")[0]

		raw, fieldWasSent := sentFields[jsonFieldName]
		if !fieldWasSent {
			continue
		}

		entityFieldValue := entityValue.FieldByName(patchFieldType.Name)
		if !entityFieldValue.IsValid() || !entityFieldValue.CanSet() {
			continue
		}
		targetType := entityFieldValue.Type()

		if raw == nil {
			entityFieldValue.Set(reflect.Zero(targetType))
			continue
		}

		switch patchValue := patchField.Interface().(type) {
		case *string:
			if patchValue != nil {
				if err := setString(entityFieldValue, *patchValue); err != nil {
					return fmt.Errorf("поле %s: %w", jsonFieldName, err)
				}
			}

		case null.String:
			if !patchValue.Valid {
				entityFieldValue.Set(reflect.Zero(targetType))
				continue
			}
			if err := setString(entityFieldValue, patchValue.String); err != nil {
				return fmt.Errorf("поле %s: %w", jsonFieldName, err)
			}

		case null.Int:
			if !patchValue.Valid {
				entityFieldValue.Set(reflect.Zero(targetType))
				continue
			}
			switch {
			case targetType == intPtrType:
				val := patchValue.Int
				entityFieldValue.Set(reflect.ValueOf(&val))
			case isNumberKind(targetType.Kind()):
				entityFieldValue.Set(reflect.ValueOf(patchValue.Int).Convert(targetType))
			}

		case null.Float64:
			if !patchValue.Valid {
				entityFieldValue.Set(reflect.Zero(targetType))
				continue
			}
			switch {
			case targetType == float64PtrTyp:
				val := patchValue.Float64
				entityFieldValue.Set(reflect.ValueOf(&val))
			case isNumberKind(targetType.Kind()):
				entityFieldValue.Set(reflect.ValueOf(patchValue.Float64).Convert(targetType))
			}

		case null.Bool:
			if !patchValue.Valid {
				entityFieldValue.Set(reflect.Zero(targetType))
				continue
			}
			if targetType == boolPtrType {
				val := patchValue.Bool
				entityFieldValue.Set(reflect.ValueOf(&val))
			} else if targetType.Kind() == reflect.Bool {
				entityFieldValue.SetBool(patchValue.Bool)
			}

		case *bool:
			if patchValue != nil {
				if targetType.Kind() == reflect.Bool {
					entityFieldValue.SetBool(*patchValue)
				} else if targetType == boolPtrType {
					entityFieldValue.Set(reflect.ValueOf(patchValue))
				}
			}
		}
	}
	return nil
}

func setString(field reflect.Value, value string) error {
	switch {
	case field.Type() == stringPtrType:
		v := value
		field.Set(reflect.ValueOf(&v))
	case field.Kind() == reflect.String:
		field.SetString(value)
	case field.Type() == timePtrType, field.Type() == timeType:
		t, err := ParseDate(value)
		if err != nil {
			return err
		}
		if field.Type() == timeType {
			field.Set(reflect.ValueOf(t))
		} else {
			field.Set(reflect.ValueOf(&t))
		}
	}
	return nil
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// PatchHasField сообщает, присутствует ли ключ в теле PATCH-запроса (в том числе со значением null).
func PatchHasField(rawRequestBody []byte, name string) bool {
	var sentFields map[string]json.RawMessage
	if err := json.Unmarshal(rawRequestBody, &sentFields); err != nil {
		return false
	}
	_, ok := sentFields[name]
	return ok
}
