// Package bus talks to the Secret Service over D-Bus.
//
// Client implements domain.SecretService with github.com/godbus/dbus/v5:
//   - OpenSession on org.freedesktop.Secret.Service, input and output as
//     variants (a string for plain, a byte array for the DH algorithm)
//   - Close on org.freedesktop.Secret.Session
//   - GetSecret and SetSecret on org.freedesktop.Secret.Item and
//     GetSecrets on the service, exchanging (oayays) structs
//
// D-Bus errors named org.freedesktop.DBus.Error.NotSupported surface as
// domain.ErrAlgorithmNotSupported; every other failure keeps the bus error
// and the method and object it came from.
package bus
