package errors

import "sort"

// Registered error codes.
const (
	CodeMalformedPattern = "N001"
	CodeDuplicateName    = "N002"
	CodeMissingHandler   = "N003"
	CodeManifest         = "N004"
	CodeConfig           = "N005"
	CodeManifestFormat   = "N006"
	CodeShadowedRoute    = "N007"
	CodeServer           = "N008"
	CodeUsage            = "N009"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeMalformedPattern: {
		Category:   CategoryRoute,
		Message:    "Malformed route pattern",
		Detail:     "A route pattern could not be compiled. Patterns start with \"/\", have no empty segments, and name parameters with identifiers (\":appId\") used once per pattern. The route table is not usable until every entry compiles.",
		Suggestion: "Fix the listed entries and run `navcore check` again.",
	},
	CodeDuplicateName: {
		Category:   CategoryRoute,
		Message:    "Duplicate route name",
		Detail:     "Two routes share a name. Names are used for reverse routing and titles, so they must be unique within a table.",
		Suggestion: "Rename one of the routes or drop its name.",
	},
	CodeMissingHandler: {
		Category:   CategoryView,
		Message:    "View without handler",
		Detail:     "A route (or the not-found fallback) references a view that has no registered handler.",
		Suggestion: "Register a handler for the view or point the route at an existing view.",
	},
	CodeManifest: {
		Category:   CategoryManifest,
		Message:    "Route manifest unreadable",
		Detail:     "The route manifest could not be read or decoded.",
		Suggestion: "Check routes.manifest, the file permissions, and for s3:// manifests the s3.region and AWS credentials.",
	},
	CodeConfig: {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "A configuration value is out of range or malformed.",
		Suggestion: "Fix the value in navcore.toml or the matching NAVCORE_ environment variable.",
	},
	CodeManifestFormat: {
		Category:   CategoryManifest,
		Message:    "Unsupported manifest format",
		Detail:     "Route manifests are read from .json or .toml files, locally or from S3.",
		Suggestion: "Rename the manifest with a .json or .toml extension.",
	},
	CodeShadowedRoute: {
		Category:   CategoryRoute,
		Message:    "Route can never match",
		Detail:     "An earlier route matches every path this route matches, so first-match-wins resolution never reaches it.",
		Suggestion: "Move the more specific route before the general one.",
	},
	CodeServer: {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	CodeUsage: {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
