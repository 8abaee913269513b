package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	HTTPStatus int    `json:"http_status,omitempty"`
	HTTPBody   string `json:"http_body,omitempty"`
}

// StatusCarrier is implemented by remote failures that know the upstream response.
type StatusCarrier interface {
	StatusCode() int
	Body() string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var carrier StatusCarrier
	if errors.As(err, &carrier) {
		d.HTTPStatus = carrier.StatusCode()
		d.HTTPBody = carrier.Body()
	}

	return d
}
