// Package common contains shared constants and sentinel errors used across
// portfolio components.
package common

import "time"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "auth-token"

// SessionTTL is the fixed lifetime of a session token and its cookie.
const SessionTTL = 7 * 24 * time.Hour
