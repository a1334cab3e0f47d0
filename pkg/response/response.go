// Package response defines the JSON error envelope shared by the HTTP
// handlers, including per-field validation details.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const StatusError = "error"

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "Failed to process the request. Please check the request body.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var URLExpiredResponse = Response{
	Status:  StatusError,
	Error:   "URL Expired",
	Message: "The requested short URL has expired.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse builds a 400 envelope from a validator error,
// listing every failed field with a human-readable message.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request contains invalid data.",
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return resp
	}

	for _, fieldErr := range validationErrs {
		resp.Details = append(resp.Details, ValidationError{
			Field:   fieldErr.Field(),
			Message: validationErrorMessage(fieldErr),
		})
	}

	return resp
}

func validationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required."
	case "url":
		return "This field must be a valid URL."
	default:
		return "This field is invalid."
	}
}
