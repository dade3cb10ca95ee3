package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// manager owns the shared sinks. Every tagged Logger writes through it.
type manager struct {
	view    io.Writer
	dev     bool
	logFile *os.File
	sink    zerolog.Logger
	logChan chan Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Logger struct {
	tag string
	m   *manager
}

var (
	logManager *manager
	once       sync.Once
)

// InitLogger configures the process-wide sinks. view receives coloured
// debug lines in dev mode (usually the tview debug console); logPath, when
// set, receives a JSON log file.
func InitLogger(dev bool, logPath string, view io.Writer) error {
	var err error
	once.Do(func() {
		logManager, err = newManager(dev, logPath, view)
	})
	return err
}

func newManager(dev bool, logPath string, view io.Writer) (*manager, error) {
	m := &manager{
		view:    view,
		dev:     dev,
		logChan: make(chan Message, 100),
		done:    make(chan struct{}),
	}
	if logPath != "" {
		timestamp := time.Now().Format("20060102_150405")
		fileName := fmt.Sprintf("cafeteira_log_%s.log", timestamp)
		filePath := filepath.Join(logPath, fileName)

		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		m.logFile = file
		m.sink = zerolog.New(file)
	}

	go m.processLogs()
	return m, nil
}

// NewLogger returns a logger tagged with the component name. Before
// InitLogger it returns a logger that discards everything.
func NewLogger(tag string) *Logger {
	return &Logger{
		tag: tag,
		m:   logManager,
	}
}

func (m *manager) processLogs() {
	defer close(m.done)
	for msg := range m.logChan {
		if m.logFile == nil {
			continue
		}
		m.sink.WithLevel(msg.LogTypes.level()).
			Time("time", msg.Timestamp).
			Str("tag", msg.Tag).
			Msg(msg.Message)
	}
}

func (l *Logger) log(logTypes Types, v ...interface{}) {
	if l == nil || l.m == nil {
		return
	}
	message := fmt.Sprint(v...)
	if l.m.dev {
		if l.m.view != nil {
			var format string
			switch logTypes {
			case Info:
				format = "[green]DEBUG (%s): %s[-]\n"
			case Error:
				format = "[red]DEBUG (%s): %s[-]\n"
			case Warn:
				format = "[yellow]DEBUG (%s): %s[-]\n"
			case Fatal:
				format = "[red]DEBUG (%s): %s[-]\n"
			}
			fmt.Fprintf(l.m.view, format, l.tag, message)
		} else {
			log.Printf("[%s] %s: %s", l.tag, logTypes.toString(), message)
		}
	}

	if l.m.logFile == nil {
		return
	}
	l.m.mu.RLock()
	defer l.m.mu.RUnlock()
	if l.m.closed {
		return
	}
	l.m.logChan <- Message{
		Timestamp: time.Now(),
		Tag:       l.tag,
		Message:   message,
		LogTypes:  logTypes,
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	l.Close()
	os.Exit(1)
}

// Close flushes pending file entries and closes the log file. It is safe to
// call more than once.
func (l *Logger) Close() {
	if l == nil || l.m == nil {
		return
	}
	l.m.mu.Lock()
	if l.m.closed {
		l.m.mu.Unlock()
		return
	}
	l.m.closed = true
	close(l.m.logChan)
	l.m.mu.Unlock()

	<-l.m.done
	if l.m.logFile != nil {
		l.m.logFile.Close()
	}
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (t Types) level() zerolog.Level {
	switch t {
	case Info:
		return zerolog.InfoLevel
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Fatal:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
