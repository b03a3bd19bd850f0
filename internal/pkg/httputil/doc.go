// Package httputil holds the JSON response helpers shared by the API
// handlers, so every endpoint writes the same envelope and content type.
package httputil
