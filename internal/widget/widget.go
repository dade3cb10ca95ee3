// Package widget implements the chat widget controller: it submits user
// messages to the backend, renders the conversation through a View and
// keeps the coffee machine indicator and last-activity text up to date.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bz888/cafeteira/internal/api"
	"github.com/bz888/cafeteira/internal/logger"
)

const (
	SubmitLabel        = "Enviar"
	BusyLabel          = "..."
	ErrorReply         = "Desculpe, ocorreu um erro ao processar sua mensagem."
	LastActivityFormat = "Última Atividade: %s"

	DefaultTimeout = 30 * time.Second
)

var (
	ErrBusy         = errors.New("widget: a message is already being sent")
	ErrEmptyMessage = errors.New("widget: empty message")
)

// Backend is the chat server as seen by the widget.
type Backend interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	Status(ctx context.Context) (*api.StatusResponse, error)
}

// View renders the widget. Implementations must be safe to call from any
// goroutine.
type View interface {
	// AppendMessage adds a transcript entry and scrolls to it.
	AppendMessage(msg Message)
	// SetBusy disables the submit control and shows the busy indicator, or
	// restores both.
	SetBusy(busy bool)
	ClearInput()
	SetDeviceStatus(status DeviceStatus)
	SetLastActivity(text string)
}

type Options struct {
	// Timeout bounds every backend request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// ConversationID is sent with every message. Empty sends null.
	ConversationID string
}

type Widget struct {
	backend        Backend
	view           View
	timeout        time.Duration
	conversationID *string
	log            *logger.Logger

	mu         sync.Mutex
	processing bool
	cancel     context.CancelFunc
	device     DeviceStatus
}

func New(backend Backend, view View, opts Options) *Widget {
	w := &Widget{
		backend: backend,
		view:    view,
		timeout: opts.Timeout,
		log:     logger.NewLogger("widget"),
	}
	if w.timeout <= 0 {
		w.timeout = DefaultTimeout
	}
	if opts.ConversationID != "" {
		id := opts.ConversationID
		w.conversationID = &id
	}
	return w
}

// Processing reports whether a submission is in flight.
func (w *Widget) Processing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processing
}

// Device returns the indicator's current state.
func (w *Widget) Device() DeviceStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.device
}

// Submit sends one message and renders the exchange. It blocks until the
// backend answers, fails or the timeout expires, and always leaves the
// widget ready for the next message. ErrEmptyMessage and ErrBusy are
// returned without touching the view. A backend failure is shown to the
// user as ErrorReply and returned.
func (w *Widget) Submit(ctx context.Context, input string) error {
	message := strings.TrimSpace(input)
	if message == "" {
		return ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	if !w.begin(cancel) {
		cancel()
		return ErrBusy
	}
	defer w.finish()

	w.view.SetBusy(true)
	w.AppendMessage(message, RoleUser)
	w.view.ClearInput()

	resp, err := w.backend.Chat(ctx, api.ChatRequest{
		ConversationID: w.conversationID,
		Message:        message,
	})
	if err != nil {
		w.log.Error("Failed to send message: ", err)
		w.AppendMessage(ErrorReply, RoleBot)
		return fmt.Errorf("submit: %w", err)
	}
	if resp == nil || resp.Answer == "" {
		w.log.Warn("Empty answer for message: ", message)
		return nil
	}

	w.AppendMessage(resp.Answer, RoleBot)
	w.UpdateDeviceStatus(message)
	// Failures are logged by RefreshStatus and never reach the user.
	_ = w.RefreshStatus(ctx)
	return nil
}

// Cancel aborts the in-flight submission, if any.
func (w *Widget) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return false
	}
	w.cancel()
	return true
}

func (w *Widget) begin(cancel context.CancelFunc) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.processing {
		return false
	}
	w.processing = true
	w.cancel = cancel
	return true
}

func (w *Widget) finish() {
	w.mu.Lock()
	w.processing = false
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.view.SetBusy(false)
}

// AppendMessage adds one entry to the transcript.
func (w *Widget) AppendMessage(content string, role Role) {
	w.view.AppendMessage(Message{Content: content, Role: role})
}

// UpdateDeviceStatus infers the indicator from an outgoing message. Without
// a keyword the indicator keeps its previous value.
func (w *Widget) UpdateDeviceStatus(message string) {
	status, ok := InferDeviceStatus(message)
	if !ok {
		return
	}
	w.setDevice(status)
}

func (w *Widget) setDevice(status DeviceStatus) {
	w.mu.Lock()
	w.device = status
	w.mu.Unlock()

	w.view.SetDeviceStatus(status)
}

// RefreshStatus fetches /status and shows the last activity verbatim. A
// recognised status field from the server overrides the inferred indicator.
// Errors are logged and returned; the display is left as it was.
func (w *Widget) RefreshStatus(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.backend.Status(ctx)
	if err != nil {
		w.log.Error("Failed to refresh status: ", err)
		return fmt.Errorf("refresh status: %w", err)
	}
	if resp == nil {
		return nil
	}

	if resp.LastActivity != "" {
		w.view.SetLastActivity(fmt.Sprintf(LastActivityFormat, resp.LastActivity))
	}
	if status, ok := ParseDeviceStatus(resp.Status); ok {
		w.setDevice(status)
	}
	return nil
}
