package netbox

import (
	"fmt"
	"net/url"

	"github.com/gorilla/schema"
)

var paramsEncoder = newParamsEncoder()

func newParamsEncoder() *schema.Encoder {
	encoder := schema.NewEncoder()
	encoder.SetAliasTag("url")

	return encoder
}

// Params encodes a filter struct into a get payload. Fields are named by
// their `url` tag; `omitempty` drops zero values. Single values stay
// scalars, repeated values become lists.
//
//	type DeviceFilter struct {
//		Site   string   `url:"site,omitempty"`
//		Status []string `url:"status,omitempty"`
//	}
func Params(filter interface{}) (Payload, error) {
	values := url.Values{}

	err := paramsEncoder.Encode(filter, values)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}

	payload := make(Payload, len(values))
	for key, items := range values {
		if len(items) == 1 {
			payload[key] = items[0]

			continue
		}

		list := make([]string, len(items))
		copy(list, items)
		payload[key] = list
	}

	return payload, nil
}
