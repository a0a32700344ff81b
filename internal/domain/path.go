package domain

import "strings"

// ObjectPath is a bus object path such as /org/freedesktop/secrets/session/s1.
type ObjectPath string

// String returns the string form of the path.
func (p ObjectPath) String() string { return string(p) }

// IsValid reports whether p follows the D-Bus object path grammar.
func (p ObjectPath) IsValid() bool {
	s := string(p)
	if s == "/" {
		return true
	}
	if len(s) < 2 || s[0] != '/' || s[len(s)-1] == '/' {
		return false
	}
	for _, elem := range strings.Split(s[1:], "/") {
		if elem == "" {
			return false
		}
		for _, c := range elem {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			default:
				return false
			}
		}
	}
	return true
}

// Well-known Secret Service object paths.
const (
	ServicePath           ObjectPath = "/org/freedesktop/secrets"
	SessionPathPrefix     ObjectPath = "/org/freedesktop/secrets/session"
	DefaultCollectionPath ObjectPath = "/org/freedesktop/secrets/aliases/default"
)

// ItemPath resolves name to an item path. Names starting with '/' are taken
// as full paths; anything else is an item of the default collection.
func ItemPath(name string) ObjectPath {
	if strings.HasPrefix(name, "/") {
		return ObjectPath(name)
	}
	return DefaultCollectionPath + "/" + ObjectPath(name)
}
