package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned to clients.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeSessionInvalid     = "SESSION_INVALID"
	CodeNoRefreshToken     = "NO_REFRESH_TOKEN"
	CodeRefreshInvalid     = "REFRESH_INVALID"
	CodeUserGone           = "USER_GONE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// User-facing messages. Authentication failures share messages by category so
// responses never reveal which credential was wrong.
const (
	MsgInvalidPayload     = "صيغة الطلب غير صالحة"
	MsgEmailTaken         = "البريد الإلكتروني مسجل مسبقاً"
	MsgInvalidCredentials = "البريد أو كلمة المرور غير صحيحة"
	MsgPasswordTooLong    = "كلمة المرور طويلة جداً"
	MsgUnauthenticated    = "الرجاء تسجيل الدخول"
	MsgSessionInvalid     = "الجلسة غير صالحة أو انتهت"
	MsgNoRefreshToken     = "لا يوجد توكن تحديث"
	MsgRefreshInvalid     = "فشل تحديث الجلسة"
	MsgUserGone           = "المستخدم غير موجود"
	MsgRateLimited        = "عدد الطلبات كبير، حاول لاحقاً"
	MsgNotFound           = "الصفحة غير موجودة"
	MsgStoreUnavailable   = "تعذر الاتصال بقاعدة البيانات"
	MsgInternal           = "خطأ داخلي في الخادم"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code, so errors.Is works against the sentinels below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Sentinels for errors.Is comparisons.
var (
	ErrEmailTaken         = NewDomainError(CodeEmailTaken, MsgEmailTaken, http.StatusConflict, nil)
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, MsgInvalidCredentials, http.StatusUnauthorized, nil)
	ErrUnauthenticated    = NewDomainError(CodeUnauthenticated, MsgUnauthenticated, http.StatusUnauthorized, nil)
	ErrSessionInvalid     = NewDomainError(CodeSessionInvalid, MsgSessionInvalid, http.StatusUnauthorized, nil)
	ErrNoRefreshToken     = NewDomainError(CodeNoRefreshToken, MsgNoRefreshToken, http.StatusUnauthorized, nil)
	ErrRefreshInvalid     = NewDomainError(CodeRefreshInvalid, MsgRefreshInvalid, http.StatusUnauthorized, nil)
	ErrUserGone           = NewDomainError(CodeUserGone, MsgUserGone, http.StatusUnauthorized, nil)
)

// NewInvalidInput reports the first violated field of a request payload.
func NewInvalidInput(field, message string) error {
	var details map[string]any
	if field != "" {
		details = map[string]any{"field": field}
	}
	return NewDomainError(CodeInvalidInput, message, http.StatusBadRequest, details)
}

func NewNotFound(message string) error {
	return NewDomainError(CodeNotFound, message, http.StatusNotFound, nil)
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, MsgRateLimited, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    MsgInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case http.StatusNotFound:
			return NewDomainError(CodeNotFound, MsgNotFound, http.StatusNotFound, nil)
		case http.StatusTooManyRequests:
			return NewDomainError(CodeRateLimited, MsgRateLimited, http.StatusTooManyRequests, nil)
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
			return NewDomainError(CodeInvalidInput, MsgInvalidPayload, fiberErr.Code, nil)
		}
		if fiberErr.Code < http.StatusInternalServerError {
			return NewDomainError(http.StatusText(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    MsgInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
