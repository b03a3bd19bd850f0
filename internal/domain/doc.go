// Package domain defines the value types shared by the ingestion services,
// repositories and handlers.
//
// Types here carry no behavior beyond pure helpers, and the package imports
// nothing from internal/.
package domain
