package netbox

import (
	"net/http"
)

// Response is the raw transport response a Resource was materialized from.
type Response struct {
	StatusCode  int
	Status      string
	Method      string
	URL         string
	Headers     http.Header
	RequestBody []byte
	Body        []byte
}

// JSON decodes the body. It fails with a DecodingError on non-JSON bodies.
func (r *Response) JSON() (Value, error) {
	value, err := ParseValue(r.Body)
	if err != nil {
		return Value{}, &DecodingError{Method: r.Method, URL: r.URL, StatusCode: r.StatusCode, Err: err}
	}

	return value, nil
}
