package errors

import (
	"errors"
	"fmt"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeValidation은 유효성 검증 실패를 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound는 리소스를 찾을 수 없음을 나타냅니다
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeSystem은 시스템 레벨 에러를 나타냅니다
	ErrorTypeSystem ErrorType = "SYSTEM"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"

	// ErrorTypeSourceUnavailable means the hardware inventory or the
	// configuration store could not be read
	ErrorTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"

	// ErrorTypeMalformedRule marks a udev clause that does not parse
	ErrorTypeMalformedRule ErrorType = "MALFORMED_RULE"

	// ErrorTypeOperationInProgress marks a second operation started while
	// another one is outstanding
	ErrorTypeOperationInProgress ErrorType = "OPERATION_IN_PROGRESS"

	// ErrorTypeCommitFailed means persisting a staged change failed
	ErrorTypeCommitFailed ErrorType = "COMMIT_FAILED"

	// ErrorTypeUnmatchableProfileInterface means no hardware matched an
	// autoinstall profile interface
	ErrorTypeUnmatchableProfileInterface ErrorType = "UNMATCHABLE_PROFILE_INTERFACE"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// 생성자 함수들

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError는 리소스를 찾을 수 없는 에러를 생성합니다
func NewNotFoundError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewSystemError는 시스템 에러를 생성합니다
func NewSystemError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// NewSourceUnavailableError creates an error for an unreadable data source
func NewSourceUnavailableError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSourceUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// NewMalformedRuleError creates an error for an unparsable udev clause
func NewMalformedRuleError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeMalformedRule,
		Message: message,
		Cause:   cause,
	}
}

// NewOperationInProgressError creates an error for re-entrant operation use
func NewOperationInProgressError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeOperationInProgress,
		Message: message,
	}
}

// NewCommitFailedError creates an error for a failed persistence write
func NewCommitFailedError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeCommitFailed,
		Message: message,
		Cause:   cause,
	}
}

// NewUnmatchableProfileInterfaceError creates an error for a profile
// interface without matching hardware
func NewUnmatchableProfileInterfaceError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeUnmatchableProfileInterface,
		Message: message,
	}
}

// 에러 타입 확인 헬퍼 함수들

func isType(err error, errorType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errorType
	}
	return false
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError는 리소스를 찾을 수 없는 에러인지 확인합니다
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsSystemError는 시스템 에러인지 확인합니다
func IsSystemError(err error) bool {
	return isType(err, ErrorTypeSystem)
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout)
}

// IsSourceUnavailableError reports a SOURCE_UNAVAILABLE error
func IsSourceUnavailableError(err error) bool {
	return isType(err, ErrorTypeSourceUnavailable)
}

// IsMalformedRuleError reports a MALFORMED_RULE error
func IsMalformedRuleError(err error) bool {
	return isType(err, ErrorTypeMalformedRule)
}

// IsOperationInProgressError reports an OPERATION_IN_PROGRESS error
func IsOperationInProgressError(err error) bool {
	return isType(err, ErrorTypeOperationInProgress)
}

// IsCommitFailedError reports a COMMIT_FAILED error
func IsCommitFailedError(err error) bool {
	return isType(err, ErrorTypeCommitFailed)
}

// IsUnmatchableProfileInterfaceError reports an UNMATCHABLE_PROFILE_INTERFACE error
func IsUnmatchableProfileInterfaceError(err error) bool {
	return isType(err, ErrorTypeUnmatchableProfileInterface)
}

// TypeOf returns the domain error type of err, or empty when err is not a
// domain error
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}
