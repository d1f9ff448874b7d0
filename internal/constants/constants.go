package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP timeouts.
const (
	// DefaultHTTPTimeout is the CLI's default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits. Retries are off unless a caller asks for them.
const (
	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch units in the CLI.
	DefaultConcurrencyLimit = 3
)

// NetBox API paths and headers.
const (
	// DocsPath serves the OpenAPI document relative to the API root.
	DocsPath = "/docs/"

	// DocsFormat is the query requesting the JSON rendering of the document.
	DocsFormat = "openapi"

	// DocsContentType is sent with the discovery request.
	DocsContentType = "application/json;"

	// TokenScheme prefixes the API token in the Authorization header.
	TokenScheme = "Token"

	// ResultsKey holds list items in paginated responses.
	ResultsKey = "results"

	// IDKey names the id field of every object.
	IDKey = "id"
)

// Token expiry.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MaskVisibleChars is how many trailing token characters stay visible.
	MaskVisibleChars = 4

	// CellTruncationLength bounds table cells.
	CellTruncationLength = 60
)
