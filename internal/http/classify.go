package http

import (
	"net/http"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// Classify returns nil for 2xx responses. Any other status yields a
// *netbox.StatusError carrying the request and the decoded response body,
// or a *netbox.DecodingError when that body is not JSON. Redirects keep the
// raw body and report their Location. It never retries.
func Classify(resp *Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	statusErr := &netbox.StatusError{
		StatusCode:  resp.StatusCode,
		Reason:      http.StatusText(resp.StatusCode),
		Method:      resp.Method,
		URL:         resp.URL,
		RequestBody: string(resp.RequestBody),
	}

	if resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest {
		statusErr.Location = resp.Headers.Get("Location")
		statusErr.ResponseBody = string(resp.Body)

		return statusErr
	}

	decoded, err := netbox.ParseValue(resp.Body)
	if err != nil {
		return &netbox.DecodingError{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	body, err := decoded.MarshalJSON()
	if err != nil {
		body = resp.Body
	}

	statusErr.ResponseBody = string(body)

	return statusErr
}
