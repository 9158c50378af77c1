package main

import (
	"net/http"

	. "github.com/CodedInternet/gomd22/onboard/errors"
	"github.com/go-chi/render"
)

// ErrResponse renders an error as JSON with the matching status code.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(err error, status int, text string) render.Renderer {
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     text,
	}
	if err != nil {
		resp.ErrorText = err.Error()
	}
	return resp
}

func ErrInvalidRequest(err error) render.Renderer {
	return newErrResponse(err, http.StatusBadRequest, "Invalid request.")
}

func ErrUnauthorized(err error) render.Renderer {
	return newErrResponse(err, http.StatusUnauthorized, "Unauthorized.")
}

func ErrPermissionDenied(err error) render.Renderer {
	return newErrResponse(err, http.StatusForbidden, "Permission denied.")
}

func ErrRender(err error) render.Renderer {
	return newErrResponse(err, http.StatusInternalServerError, "Error rendering response.")
}

// ErrBus reports a failed bus transaction with one of the boards.
func ErrBus(err error) render.Renderer {
	return newErrResponse(err, http.StatusBadGateway, "Bus error.")
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

// errDevice picks the response for an error returned by the device.
func errDevice(err error) render.Renderer {
	if _, ok := err.(UnitNameError); ok {
		return newErrResponse(err, http.StatusNotFound, "Resource not found.")
	}
	return ErrBus(err)
}
