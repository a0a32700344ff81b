// Package app wires application dependencies for the CLI.
//
// LoadConfig reads the TOML configuration over DefaultConfig. NewWire then
// builds the logger, the metrics registry, the remote Secret Service (the
// D-Bus client, or the in-process mock when mock.enabled is set), the
// session negotiator and the secret service, exposing them via the Wire
// struct for commands to use.
package app
