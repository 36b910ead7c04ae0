// Package api is the HTTP surface over the helpdesk, knowledge, and
// conversation services.
//
// Handlers stay thin: decode, call the service, map the error, encode.
// Error payloads are always {"error": "..."}; validation errors carry their
// message, everything else is generic with details in the server log.
package api
