// Package commands defines the secretctl CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - session    Negotiate a transfer session and print its algorithm
//   - get        Fetch and decode the secret of an item
//   - set        Encode and store a secret on an item
//   - roundtrip  Encode a value through the session and decode it again
//
// # Implementation
//
// The root command loads the TOML configuration, applies flag overrides and
// builds the app.Wire (logger, metrics, bus client or in-process mock,
// negotiator, secret service) before any subcommand runs. After the
// subcommand it disconnects the session so the service can drop its side.
package commands
