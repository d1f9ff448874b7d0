package constants

import "errors"

// Configuration errors.
var (
	ErrNoURLConfigured   = errors.New("no NetBox URL configured, use 'netbox config set url <url>' or --url")
	ErrNoTokenConfigured = errors.New("no API token configured, use 'netbox config set-token' or --token")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
)

// Command errors.
var (
	ErrInvalidKeyValue     = errors.New("expected key=value")
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrInvalidPayloadShape = errors.New("payload must be a mapping or a list of mappings")
	ErrInvalidRequestFile  = errors.New("request file must be a mapping of verb to payload")
	ErrEmptyToken          = errors.New("token must not be empty")
	ErrInvalidExpiryTime   = errors.New("expiry must be RFC 3339 or YYYY-MM-DD")
)
