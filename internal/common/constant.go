// Package common contains shared constants and sentinel errors used across
// devconnector components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the signed token inside the authorization header.
const BearerPrefix = "Bearer "
