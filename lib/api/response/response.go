package response

import (
	"errors"

	"liveqa/entity"
	"liveqa/lib/validate"
)

// Response is the error body returned by every failing endpoint.
type Response struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// List wraps collections; pagination is omitted for unpaginated lists.
type List struct {
	Data       interface{}        `json:"data"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

func Error(message string) Response {
	return Response{
		Error: message,
	}
}

// Invalid reports validation details; non-validation errors get a generic message.
func Invalid(err error) Response {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return Response{
			Error:   "Validation failed",
			Details: ve.Details,
		}
	}
	return Error("Invalid request")
}

func Items(data interface{}) List {
	return List{Data: data}
}

func Page(data interface{}, pagination *entity.Pagination) List {
	return List{Data: data, Pagination: pagination}
}
