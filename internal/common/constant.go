package common

// SessionCookieName is the cookie that carries the signed session handle.
const SessionCookieName = "session"
