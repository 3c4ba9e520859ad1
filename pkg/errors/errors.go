package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound = fmt.Errorf("запись не найдена")
)

// DomainError - ошибка бизнес-правила с машинным кодом и HTTP-статусом.
// errors.Is сравнивает ошибки по коду, поэтому ошибки с уточнённым
// сообщением совпадают со своими базовыми значениями.
type DomainError struct {
	Code    string
	Status  int
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithStatus возвращает копию ошибки с другим HTTP-статусом.
func (e *DomainError) WithStatus(status int) *DomainError {
	c := *e
	c.Status = status
	return &c
}

// WithMessage возвращает копию ошибки с другим сообщением.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func newDomainError(code string, status int, message string) *DomainError {
	return &DomainError{Code: code, Status: status, Message: message}
}

var (
	ErrEquipmentNotFound      = newDomainError("EQUIPMENT_NOT_FOUND", http.StatusNotFound, "оборудование не найдено")
	ErrEquipmentScrapped      = newDomainError("EQUIPMENT_SCRAPPED", http.StatusBadRequest, "оборудование списано, новые заявки на него не принимаются")
	ErrRequestNotFound        = newDomainError("REQUEST_NOT_FOUND", http.StatusNotFound, "заявка не найдена")
	ErrTeamNotFound           = newDomainError("TEAM_NOT_FOUND", http.StatusNotFound, "команда не найдена")
	ErrUserNotFound           = newDomainError("USER_NOT_FOUND", http.StatusNotFound, "пользователь не найден")
	ErrTechnicianNotFound     = newDomainError("TECHNICIAN_NOT_FOUND", http.StatusBadRequest, "исполнитель не найден")
	ErrScheduledDateRequired  = newDomainError("SCHEDULED_DATE_REQUIRED", http.StatusBadRequest, "для профилактической заявки требуется дата проведения")
	ErrInvalidStageTransition = newDomainError("INVALID_STAGE_TRANSITION", http.StatusBadRequest, "недопустимый переход стадии")
	ErrDurationRequired       = newDomainError("DURATION_REQUIRED", http.StatusBadRequest, "перед завершением ремонта укажите затраченное время")
	ErrStageChangeNotAllowed  = newDomainError("STAGE_CHANGE_NOT_ALLOWED", http.StatusBadRequest, "стадия меняется только через PATCH /requests/:id/stage")
	ErrStageConflict          = newDomainError("STAGE_CONFLICT", http.StatusConflict, "стадия заявки была изменена параллельно, повторите запрос")
	ErrDependentRecordsExist  = newDomainError("DEPENDENT_RECORDS_EXIST", http.StatusBadRequest, "удаление невозможно: существуют зависимые записи")
	ErrEmailAlreadyExists     = newDomainError("EMAIL_ALREADY_EXISTS", http.StatusBadRequest, "пользователь с таким email уже существует")
	ErrAlreadyTeamMember      = newDomainError("ALREADY_TEAM_MEMBER", http.StatusBadRequest, "пользователь уже состоит в команде")
	ErrTeamMemberNotFound     = newDomainError("TEAM_MEMBER_NOT_FOUND", http.StatusNotFound, "пользователь не состоит в команде")
	ErrDuplicateSerialNumber  = newDomainError("DUPLICATE_SERIAL_NUMBER", http.StatusBadRequest, "оборудование с таким серийным номером уже существует")
	ErrDuplicateTeamName      = newDomainError("DUPLICATE_TEAM_NAME", http.StatusBadRequest, "команда с таким названием уже существует")
	ErrDuplicatePreventive    = newDomainError("DUPLICATE_PREVENTIVE_REQUEST", http.StatusBadRequest, "профилактика на эту дату для оборудования уже запланирована")

	ErrInvalidCredentials = newDomainError("INVALID_CREDENTIALS", http.StatusUnauthorized, "неверные учётные данные")
	ErrUnauthorized       = newDomainError("UNAUTHORIZED", http.StatusUnauthorized, "требуется авторизация")
	ErrForbidden          = newDomainError("FORBIDDEN", http.StatusForbidden, "доступ запрещён")
)

// NewInvalidStageTransition формирует ошибку с текущей и запрошенной стадией.
func NewInvalidStageTransition(from, to string) *DomainError {
	return ErrInvalidStageTransition.WithMessage("переход стадии из %q в %q недопустим", from, to)
}

// HttpError - ошибка транспортного уровня (неверный параметр, тело запроса и т.п.).
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}
