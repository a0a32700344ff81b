package bus

import (
	"github.com/godbus/dbus/v5"

	"secretsession/internal/domain"
)

// wireSecret is the (oayays) struct on the bus.
type wireSecret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

func fromDomain(s domain.WireSecret) wireSecret {
	params := s.Parameters
	if params == nil {
		params = []byte{}
	}
	value := s.Value
	if value == nil {
		value = []byte{}
	}
	return wireSecret{
		Session:     dbus.ObjectPath(s.Session),
		Parameters:  params,
		Value:       value,
		ContentType: s.ContentType,
	}
}

func (s wireSecret) domain() domain.WireSecret {
	return domain.WireSecret{
		Session:     domain.ObjectPath(s.Session),
		Parameters:  s.Parameters,
		Value:       s.Value,
		ContentType: s.ContentType,
	}
}
