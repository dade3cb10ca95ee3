package widget

import "strings"

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry. It lives only in the view.
type Message struct {
	Content string
	Role    Role
}

// DeviceStatus is the coffee machine indicator shown next to the chat.
type DeviceStatus int

const (
	DeviceUnknown DeviceStatus = iota
	DeviceOn
	DeviceOff
)

const (
	activateKeyword   = "ligar"
	deactivateKeyword = "desligar"
)

func (s DeviceStatus) String() string {
	switch s {
	case DeviceOn:
		return "on"
	case DeviceOff:
		return "off"
	default:
		return "unknown"
	}
}

// Label is the status text displayed for s.
func (s DeviceStatus) Label() string {
	switch s {
	case DeviceOn:
		return "Cafeteira: Ligada"
	case DeviceOff:
		return "Cafeteira: Desligada"
	default:
		return "Cafeteira: --"
	}
}

// InferDeviceStatus guesses the device state from an outgoing message. The
// deactivate keyword contains the activate keyword, so it is tested first.
// ok is false when neither keyword is present.
func InferDeviceStatus(message string) (status DeviceStatus, ok bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, deactivateKeyword):
		return DeviceOff, true
	case strings.Contains(lower, activateKeyword):
		return DeviceOn, true
	default:
		return DeviceUnknown, false
	}
}

// ParseDeviceStatus maps the status field reported by the server.
func ParseDeviceStatus(s string) (DeviceStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ligada", "on":
		return DeviceOn, true
	case "desligada", "off":
		return DeviceOff, true
	default:
		return DeviceUnknown, false
	}
}
