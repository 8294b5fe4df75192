package response

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pivotdash/errors"
)

type Ext struct {
	*fiber.Ctx
}

// Ok : 성공(200) 응답
func (ext Ext) Ok(data interface{}) error {
	return ext.Status(fiber.StatusOK).JSON(data)
}

// Error : 에러 응답
// - err: 실제 Go 에러 객체
// - errCode: (옵션) 명시적 에러 코드
func (ext Ext) Error(err error, errCode ...string) error {
	var code string
	if len(errCode) > 0 {
		code = errCode[0]
	} else {
		code = err.Error()
	}

	msg := errors.GetErrorMessage(code)

	status := fiber.StatusBadRequest
	switch code {
	case errors.ErrInvalidQueryPayload,
		errors.ErrJWTVerification,
		errors.ErrExpiredToken,
		errors.ErrMissingToken,
		errors.ErrInvalidCredentials:
		status = fiber.StatusUnauthorized
	case errors.ErrUnknownPair, errors.ErrUnknownTimeframe:
		status = fiber.StatusNotFound
	case errors.ErrDuplicateEmail:
		status = fiber.StatusConflict
	case errors.ErrNewsUnavailable:
		status = fiber.StatusServiceUnavailable
	}

	res := errors.ErrorResponse{
		Code:    strconv.Itoa(status),
		Message: msg,
	}
	return ext.Status(status).JSON(res)
}

// Panic : 서버 내부 에러 (500) 응답
func (ext Ext) Panic(id interface{}) error {
	fmt.Printf("[PANIC] %v\n", id)
	res := errors.ErrorResponse{
		Code:    strconv.Itoa(fiber.StatusInternalServerError),
		Message: "Internal Server Error",
	}
	return ext.Status(fiber.StatusInternalServerError).JSON(res)
}

// Forbidden : 권한 부족 등 403 응답
func (ext Ext) Forbidden(err error, errCode ...string) error {
	var code string
	if len(errCode) > 0 {
		code = errCode[0]
	} else {
		code = err.Error()
	}

	msg := errors.GetErrorMessage(code)

	res := errors.ErrorResponse{
		Code:    strconv.Itoa(fiber.StatusForbidden),
		Message: msg,
	}
	return ext.Status(fiber.StatusForbidden).JSON(res)
}
