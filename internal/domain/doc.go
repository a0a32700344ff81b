// Package domain defines the core data models and interfaces shared across
// secretsession.
//
// It contains plain types only:
//   - Session, the negotiated transfer context (algorithm + optional key)
//   - SecretValue, a secret payload together with its content type
//   - WireSecret, the (oayays) tuple exchanged with the Secret Service
//   - the error sentinels every layer returns
//
// and the contracts (interfaces) implemented by the bus adapter, the fake
// service and the session negotiator.
package domain
