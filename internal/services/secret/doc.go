// Package secret reads and writes item secrets over an established transfer
// session.
//
// Every call first asks the SessionProvider for the session (negotiating it
// on first use), then moves the (oayays) tuple through the SecretService and
// encodes or decodes it with the session's algorithm.
package secret
