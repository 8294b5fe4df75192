package errors

import (
	_errors "errors"
	"fmt"
	"net/http"
)

// API error codes shared between handlers and response helpers.
const (
	ErrInvalidQueryPayload = "invalid_query_payload"
	ErrJWTVerification     = "jwt_verification"
	ErrExpiredToken        = "expired_token"
	ErrMissingToken        = "missing_token"
	ErrInvalidCredentials  = "invalid_credentials"
	ErrDuplicateEmail      = "duplicate_email"
	ErrUnknownPair         = "unknown_pair"
	ErrUnknownTimeframe    = "unknown_timeframe"
	ErrRequestParser       = "request_parser"
	ErrNewsUnavailable     = "news_unavailable"
	ErrInternalServer      = "internal_server"
)

var ErrorMessages = map[string]string{
	ErrInvalidQueryPayload: "Query payload is not valid.",
	ErrJWTVerification:     "Token verification failed.",
	ErrExpiredToken:        "Token has expired.",
	ErrMissingToken:        "Authorization token is missing.",
	ErrInvalidCredentials:  "Email or password is incorrect.",
	ErrDuplicateEmail:      "An account with this email already exists.",
	ErrUnknownPair:         "The requested pair is not being tracked.",
	ErrUnknownTimeframe:    "The requested timeframe is not supported.",
	ErrRequestParser:       "The request body could not be parsed.",
	ErrNewsUnavailable:     "News is temporarily unavailable.",
	ErrInternalServer:      "Internal Server Error",
}

func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "The request is not valid."
}

// ErrorBase carries an API error code with its HTTP status. It implements
// error so handlers can return it directly and let the error handler map it.
type ErrorBase struct {
	Code    string
	Status  int
	Message string
}

func (e *ErrorBase) Error() string {
	return fmt.Sprintf("%s(%d): %s", e.Code, e.Status, e.Message)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorBase) NewErrorResponse() ErrorResponse {
	return ErrorResponse{Code: e.Code, Message: e.Message}
}

func New(code string, status int) *ErrorBase {
	return &ErrorBase{Code: code, Status: status, Message: GetErrorMessage(code)}
}

func NewInternalServerError() *ErrorBase {
	return New(ErrInternalServer, http.StatusInternalServerError)
}

func NewRequestParserError(typeName string) *ErrorBase {
	return &ErrorBase{
		Code:    ErrRequestParser,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("The request body could not be parsed into %s.", typeName),
	}
}

func NewUnauthorized(code string) *ErrorBase {
	return New(code, http.StatusUnauthorized)
}

func NewBadRequest(code string) *ErrorBase {
	return New(code, http.StatusBadRequest)
}

func NewNotFound(code string) *ErrorBase {
	return New(code, http.StatusNotFound)
}

func NewConflict(code string) *ErrorBase {
	return New(code, http.StatusConflict)
}

// ConvertToErrorBase unwraps err into an ErrorBase when possible.
func ConvertToErrorBase(err error) (*ErrorBase, error) {
	var base *ErrorBase
	if _errors.As(err, &base) {
		return base, nil
	}
	return nil, err
}
