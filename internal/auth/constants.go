package auth

// SessionCookieName is the name of the httpOnly cookie used for browser session auth.
// This is shared across HTTP middleware and WebSocket upgrade auth.
const SessionCookieName = "crib_session"
