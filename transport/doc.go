// Package transport paces HTTP traffic with a [limiter.Limiter].
//
// [NewRoundTripper] limits outbound requests made by an http.Client;
// [Middleware] limits inbound requests reaching an http.Handler and
// answers the rest with 429 Too Many Requests.
package transport
