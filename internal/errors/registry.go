package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (N001-N009, N030-N039)
	// ============================================

	"N001": {
		Category:   CategoryConfig,
		Message:    "Undefined middleware",
		Suggestion: "Register the middleware in the registration table or remove it from the view",
		DocURL:     "https://navguard.dev/docs/errors/N001",
	},
	"N002": {
		Category:   CategoryConfig,
		Message:    "Middleware module has no handler",
		Suggestion: "The module was registered with a nil handler; export a handler function for it",
		DocURL:     "https://navguard.dev/docs/errors/N002",
	},
	"N030": {
		Category:   CategoryConfig,
		Message:    "Invalid view definition",
		Suggestion: "Check the view's middleware list for empty entries",
		DocURL:     "https://navguard.dev/docs/errors/N030",
	},

	// ============================================
	// Resolution Errors (N010-N019)
	// ============================================

	"N010": {
		Category: CategoryResolution,
		Message:  "View resolution failed",
		DocURL:   "https://navguard.dev/docs/errors/N010",
	},
	"N011": {
		Category:   CategoryResolution,
		Message:    "Deferred view loader returned no view",
		Suggestion: "Loaders must return a non-nil *view.Definition or an error",
		DocURL:     "https://navguard.dev/docs/errors/N011",
	},

	// ============================================
	// Data Errors (N020-N029)
	// ============================================

	"N020": {
		Category: CategoryData,
		Message:  "Async data fetch failed",
		DocURL:   "https://navguard.dev/docs/errors/N020",
	},

	// ============================================
	// Route Errors (N040-N049)
	// ============================================

	"N040": {
		Category: CategoryRoute,
		Message:  "No route with that name",
		DocURL:   "https://navguard.dev/docs/errors/N040",
	},
	"N041": {
		Category: CategoryRoute,
		Message:  "Invalid navigation path",
		DocURL:   "https://navguard.dev/docs/errors/N041",
	},
	"N042": {
		Category:   CategoryRoute,
		Message:    "Duplicate route",
		Suggestion: "Route names and paths must be unique within a table",
		DocURL:     "https://navguard.dev/docs/errors/N042",
	},
	"N043": {
		Category:   CategoryRoute,
		Message:    "Too many redirects",
		Suggestion: "Check the middleware for redirect loops",
		DocURL:     "https://navguard.dev/docs/errors/N043",
	},

	// ============================================
	// Config File Errors (N050-N059)
	// ============================================

	"N050": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create navguard.json (or navguard.toml) in the project root",
		DocURL:     "https://navguard.dev/docs/errors/N050",
	},
	"N051": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
		DocURL:   "https://navguard.dev/docs/errors/N051",
	},
	"N052": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://navguard.dev/docs/errors/N052",
	},

	// ============================================
	// Manifest Errors (N060-N069)
	// ============================================

	"N060": {
		Category: CategoryManifest,
		Message:  "Route manifest could not be parsed",
		DocURL:   "https://navguard.dev/docs/errors/N060",
	},
	"N061": {
		Category:   CategoryManifest,
		Message:    "Route manifest references an unknown view",
		Suggestion: "Add the view to the catalog passed to manifest.Load",
		DocURL:     "https://navguard.dev/docs/errors/N061",
	},

	// ============================================
	// Navigation Errors (N070-N079)
	// ============================================

	"N070": {
		Category: CategoryMiddleware,
		Message:  "Middleware failed",
		DocURL:   "https://navguard.dev/docs/errors/N070",
	},
	"N071": {
		Category:   CategoryNavigation,
		Message:    "Navigation cancelled",
		Suggestion: "A newer navigation started or the caller gave up before the guard finished",
		DocURL:     "https://navguard.dev/docs/errors/N071",
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
