// Package services holds the shared error taxonomy and request context
// helpers used by the external service clients (marketplace and catalog)
// and the matching pipeline built on top of them.
package services
