package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamRoute  string `json:"upstream_route,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// upstreamFailure is implemented by transport errors that captured the raw
// backend response.
type upstreamFailure interface {
	UpstreamStatus() int
	UpstreamRoute() string
	UpstreamBody() string
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

	var up upstreamFailure
	if errors.As(err, &up) {
		d.UpstreamStatus = up.UpstreamStatus()
		d.UpstreamRoute = up.UpstreamRoute()
		d.UpstreamBody = up.UpstreamBody()
	}

	return d
}
