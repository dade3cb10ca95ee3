package ui

import (
	"context"
	"testing"
	"time"

	"github.com/bz888/cafeteira/internal/api"
	"github.com/bz888/cafeteira/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(dev bool) *Screen {
	s := New(dev)
	s.queue = func(f func()) { f() }
	return s
}

func TestAppendMessageWritesTranscript(t *testing.T) {
	s := newTestScreen(false)

	s.AppendMessage(widget.Message{Content: "ligar a cafeteira", Role: widget.RoleUser})
	s.AppendMessage(widget.Message{Content: "Cafeteira ligada!", Role: widget.RoleBot})

	text := s.transcript.GetText(true)
	assert.Equal(t, "Você:\nligar a cafeteira\n\nBot:\nCafeteira ligada!\n\n", text)
}

func TestSetBusyTogglesSendButton(t *testing.T) {
	s := newTestScreen(false)

	s.SetBusy(true)
	assert.True(t, s.sendButton.IsDisabled())
	assert.Equal(t, widget.BusyLabel, s.sendButton.GetLabel())

	s.SetBusy(false)
	assert.False(t, s.sendButton.IsDisabled())
	assert.Equal(t, widget.SubmitLabel, s.sendButton.GetLabel())
}

func TestSetDeviceStatus(t *testing.T) {
	s := newTestScreen(false)
	assert.Equal(t, "Cafeteira: --", s.statusText.GetText(false))

	s.SetDeviceStatus(widget.DeviceOn)
	assert.Equal(t, indicatorOn, s.indicator.GetText(false))
	assert.Equal(t, "Cafeteira: Ligada", s.statusText.GetText(false))

	s.SetDeviceStatus(widget.DeviceOff)
	assert.Equal(t, indicatorOff, s.indicator.GetText(false))
	assert.Equal(t, "Cafeteira: Desligada", s.statusText.GetText(false))
}

func TestSetLastActivityAndClearInput(t *testing.T) {
	s := newTestScreen(false)

	s.SetLastActivity("Última Atividade: 2024-01-01T00:00:00")
	assert.Equal(t, "Última Atividade: 2024-01-01T00:00:00", s.lastActivity.GetText(false))

	s.input.SetText("rascunho")
	s.ClearInput()
	assert.Empty(t, s.input.GetText())
}

func TestRunCommand(t *testing.T) {
	s := newTestScreen(false)

	assert.True(t, s.runCommand("/help"))
	assert.Contains(t, s.transcript.GetText(true), "/status")

	assert.False(t, s.runCommand("ligar a cafeteira"))
}

func TestToggleDebugConsole(t *testing.T) {
	s := newTestScreen(false)
	require.Equal(t, 1, s.mainFlex.GetItemCount())

	s.runCommand("/debug")
	assert.True(t, s.debugVisible)
	assert.Equal(t, 2, s.mainFlex.GetItemCount())

	s.runCommand("/debug")
	assert.False(t, s.debugVisible)
	assert.Equal(t, 1, s.mainFlex.GetItemCount())
}

func TestDevModeShowsDebugConsole(t *testing.T) {
	s := newTestScreen(true)
	assert.True(t, s.debugVisible)
	assert.Equal(t, 2, s.mainFlex.GetItemCount())
}

type gatedBackend struct {
	entered chan string
	release chan struct{}
}

func (b *gatedBackend) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	b.entered <- req.Message
	<-b.release
	return &api.ChatResponse{Answer: "feito"}, nil
}

func (b *gatedBackend) Status(ctx context.Context) (*api.StatusResponse, error) {
	return &api.StatusResponse{}, nil
}

func TestEnterIgnoredWhileProcessing(t *testing.T) {
	s := newTestScreen(false)
	backend := &gatedBackend{entered: make(chan string, 2), release: make(chan struct{})}
	s.widget = widget.New(backend, s, widget.Options{})
	s.ctx = context.Background()

	s.input.SetText("primeira")
	s.submit()
	assert.Equal(t, "primeira", <-backend.entered)

	s.input.SetText("segunda")
	s.submit()
	assert.Equal(t, "segunda", s.input.GetText())

	close(backend.release)
	assert.Eventually(t, func() bool { return !s.widget.Processing() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, backend.entered)
}
