// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the account, set and practice services
// to the JSON API and maps their errors to status codes.
package api
