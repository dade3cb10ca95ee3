package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bz888/cafeteira/internal/logger"
	"github.com/bz888/cafeteira/internal/widget"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	indicatorOn      = "[green]●[-]"
	indicatorOff     = "[red]●[-]"
	indicatorUnknown = "[gray]●[-]"
)

// Screen is the terminal rendition of the chat widget. It implements
// widget.View.
type Screen struct {
	app          *tview.Application
	debugConsole *tview.TextView
	transcript   *tview.TextView
	input        *tview.InputField
	sendButton   *tview.Button
	indicator    *tview.TextView
	statusText   *tview.TextView
	lastActivity *tview.TextView
	mainFlex     *tview.Flex
	debugVisible bool

	// queue runs f on the event loop. Tests replace it with a direct call.
	queue func(f func())

	ctx         context.Context
	widget      *widget.Widget
	localLogger *logger.Logger
}

// New builds every primitive. The debug console is shown when dev is set.
func New(dev bool) *Screen {
	app := tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	s := &Screen{
		app:   app,
		queue: func(f func()) { app.QueueUpdateDraw(f) },
		ctx:   context.Background(),
	}
	s.debugConsole = s.initDebugConsole()
	s.transcript = initChatViewer()
	s.input = initChatInput()
	s.sendButton = tview.NewButton(widget.SubmitLabel)
	s.sendButton.SetBorder(true)
	s.indicator, s.statusText, s.lastActivity = initStatusBar()

	s.layout(dev)
	s.bindKeys()
	return s
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversa").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initChatInput() *tview.InputField {
	input := tview.NewInputField().
		SetPlaceholder("Digite sua mensagem...").
		SetFieldWidth(0)
	input.SetTitle("Mensagem").SetBorder(true)
	return input
}

func initStatusBar() (indicator, statusText, lastActivity *tview.TextView) {
	indicator = tview.NewTextView().SetDynamicColors(true).SetText(indicatorUnknown)
	statusText = tview.NewTextView().SetText(widget.DeviceUnknown.Label())
	lastActivity = tview.NewTextView().SetTextAlign(tview.AlignRight)
	return indicator, statusText, lastActivity
}

func (s *Screen) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)
	// Loggers write from any goroutine, including the event loop itself, and
	// Draw blocks until the loop picks it up.
	console.SetChangedFunc(func() {
		go s.app.Draw()
	})

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

func (s *Screen) layout(dev bool) {
	statusBar := tview.NewFlex().
		AddItem(s.indicator, 2, 0, false).
		AddItem(s.statusText, 0, 1, false).
		AddItem(s.lastActivity, 0, 1, false)

	inputRow := tview.NewFlex().
		AddItem(s.input, 0, 1, true).
		AddItem(s.sendButton, 12, 0, false)

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statusBar, 1, 0, false).
		AddItem(s.transcript, 0, 1, false).
		AddItem(inputRow, 3, 0, true)

	s.mainFlex = tview.NewFlex().
		AddItem(subFlex, 0, 2, true)

	if dev {
		s.mainFlex.AddItem(s.debugConsole, 0, 1, false)
		s.debugVisible = true
	}
}

func (s *Screen) bindKeys() {
	s.transcript.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyESC:
			s.app.SetFocus(s.input)
			return nil
		}
		return event
	})

	s.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			s.submit()
		case tcell.KeyESC:
			if s.widget != nil && s.widget.Cancel() {
				s.localLogger.Info("In-flight message cancelled")
				return
			}
			if s.transcript.GetText(false) != "" {
				s.app.SetFocus(s.transcript)
			}
		case tcell.KeyTab:
			s.app.SetFocus(s.sendButton)
		}
	})

	s.sendButton.SetSelectedFunc(s.submit)
	s.sendButton.SetExitFunc(func(key tcell.Key) {
		s.app.SetFocus(s.input)
	})
}

// DebugConsole is the writer the logger mirrors to in dev mode.
func (s *Screen) DebugConsole() io.Writer {
	return s.debugConsole
}

// Run attaches the widget, fetches the initial status and blocks until the
// user quits or ctx is done.
func (s *Screen) Run(ctx context.Context, w *widget.Widget) error {
	s.ctx = ctx
	s.widget = w
	s.localLogger = logger.NewLogger("views")

	go func() {
		// Errors are logged by the widget.
		_ = w.RefreshStatus(ctx)
	}()
	go func() {
		<-ctx.Done()
		s.app.Stop()
	}()

	return s.app.SetRoot(s.mainFlex, true).SetFocus(s.input).Run()
}

// submit runs on the event loop. Slash commands are handled here; anything
// else goes to the widget on its own goroutine.
func (s *Screen) submit() {
	content := s.input.GetText()
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return
	}
	if s.runCommand(trimmed) {
		s.input.SetText("")
		return
	}
	if s.widget == nil || s.widget.Processing() {
		return
	}

	go func() {
		err := s.widget.Submit(s.ctx, content)
		if err != nil && !errors.Is(err, widget.ErrBusy) && !errors.Is(err, widget.ErrEmptyMessage) {
			s.localLogger.Warn("Submit finished with error: ", err)
		}
	}()
}

func (s *Screen) runCommand(content string) bool {
	switch content {
	case "/help":
		s.listHelp(content)
	case "/bye", "/quit", "/exit":
		s.quitApp()
	case "/debug":
		s.toggleDebugConsole()
	case "/status":
		if s.widget != nil {
			go func() {
				_ = s.widget.RefreshStatus(s.ctx)
			}()
		}
	default:
		return false
	}
	return true
}

func (s *Screen) listHelp(content string) {
	fmt.Fprintln(s.transcript, "[red::]Você:[-]")
	fmt.Fprintf(s.transcript, "%s\n\n", content)

	fmt.Fprintf(s.transcript, "[green::]Bot:[-]\n")
	fmt.Fprintf(s.transcript, "Comandos disponíveis:\n")
	fmt.Fprintf(s.transcript, "- /help: mostra esta ajuda\n")
	fmt.Fprintf(s.transcript, "- /status: atualiza o status da cafeteira\n")
	fmt.Fprintf(s.transcript, "- /debug: mostra ou esconde o console de depuração\n")
	fmt.Fprintf(s.transcript, "- /bye: sai do aplicativo\n")
	fmt.Fprintf(s.transcript, "- Esc: cancela a mensagem em andamento\n\n")
	s.transcript.ScrollToEnd()
}

func (s *Screen) toggleDebugConsole() {
	if s.debugVisible {
		s.mainFlex.RemoveItem(s.debugConsole)
		fmt.Fprintf(s.transcript, "\nConsole de depuração desativado\n\n")
	} else {
		s.mainFlex.AddItem(s.debugConsole, 0, 1, false)
		fmt.Fprintf(s.transcript, "\nConsole de depuração ativado\n\n")
	}
	s.debugVisible = !s.debugVisible
}

func (s *Screen) quitApp() {
	fmt.Fprintf(s.transcript, "Até logo!\n")
	if s.widget != nil {
		s.widget.Cancel()
	}
	s.app.Stop()
}

// AppendMessage implements widget.View.
func (s *Screen) AppendMessage(msg widget.Message) {
	s.queue(func() {
		switch msg.Role {
		case widget.RoleUser:
			fmt.Fprintln(s.transcript, "[red::]Você:[-]")
		default:
			fmt.Fprintln(s.transcript, "[green::]Bot:[-]")
		}
		fmt.Fprintf(s.transcript, "%s\n\n", tview.Escape(msg.Content))
		s.transcript.ScrollToEnd()
	})
}

// SetBusy implements widget.View.
func (s *Screen) SetBusy(busy bool) {
	s.queue(func() {
		s.sendButton.SetDisabled(busy)
		if busy {
			s.sendButton.SetLabel(widget.BusyLabel)
		} else {
			s.sendButton.SetLabel(widget.SubmitLabel)
		}
	})
}

// ClearInput implements widget.View.
func (s *Screen) ClearInput() {
	s.queue(func() {
		s.input.SetText("")
	})
}

// SetDeviceStatus implements widget.View.
func (s *Screen) SetDeviceStatus(status widget.DeviceStatus) {
	s.queue(func() {
		switch status {
		case widget.DeviceOn:
			s.indicator.SetText(indicatorOn)
		case widget.DeviceOff:
			s.indicator.SetText(indicatorOff)
		default:
			s.indicator.SetText(indicatorUnknown)
		}
		s.statusText.SetText(status.Label())
	})
}

// SetLastActivity implements widget.View.
func (s *Screen) SetLastActivity(text string) {
	s.queue(func() {
		s.lastActivity.SetText(text)
	})
}
