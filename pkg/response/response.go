package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	LOCKED         ErrCode = "LOCKED"
	CONFLICT       ErrCode = "CONFLICT"
	VALIDATION     ErrCode = "VALIDATION_FAILED"
	BOOKING_DENIED ErrCode = "BOOKING_DENIED"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

func Error(code ErrCode, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(code),
			Message: msg,
		},
	}
}
