package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferDeviceStatus(t *testing.T) {
	tests := []struct {
		message string
		want    DeviceStatus
		ok      bool
	}{
		{"ligar a cafeteira", DeviceOn, true},
		{"desligar a cafeteira", DeviceOff, true},
		{"DESLIGAR agora", DeviceOff, true},
		{"pode religar?", DeviceOn, true},
		{"qual o nível de água?", DeviceUnknown, false},
		{"", DeviceUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := InferDeviceStatus(tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceStatusLabels(t *testing.T) {
	assert.Equal(t, "Cafeteira: Ligada", DeviceOn.Label())
	assert.Equal(t, "Cafeteira: Desligada", DeviceOff.Label())
	assert.Equal(t, "on", DeviceOn.String())
	assert.Equal(t, "off", DeviceOff.String())
	assert.Equal(t, "unknown", DeviceUnknown.String())
}

func TestParseDeviceStatus(t *testing.T) {
	s, ok := ParseDeviceStatus("ligada")
	assert.True(t, ok)
	assert.Equal(t, DeviceOn, s)

	s, ok = ParseDeviceStatus(" Desligada ")
	assert.True(t, ok)
	assert.Equal(t, DeviceOff, s)

	_, ok = ParseDeviceStatus("")
	assert.False(t, ok)
}
