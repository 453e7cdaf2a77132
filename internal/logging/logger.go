package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case TRACE:
		return logrus.TraceLevel
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel разбирает уровень из строки конфигурации ("debug", "info", ...)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger логгер компонента. Все компоненты пишут через общий logrus.Logger,
// различаясь полем component.
type Logger struct {
	entry *logrus.Entry
}

var (
	baseMu sync.Mutex
	base   = newBase()
	file   *os.File
)

// out основной вывод; файл логов дублирует его
var out io.Writer = os.Stdout

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.DateTime})
	return l
}

// Init настраивает уровень и, если dir не пустой, дублирует вывод в файл
// dir/automata_<timestamp>.log.
func Init(level string, dir string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	baseMu.Lock()
	defer baseMu.Unlock()

	base.SetLevel(lvl.logrus())
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории логов: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("automata_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("ошибка создания файла логов: %w", err)
	}
	if file != nil {
		file.Close()
	}
	file = f
	base.SetOutput(io.MultiWriter(out, f))
	return nil
}

// Close закрывает файл логов, если он был открыт
func Close() {
	baseMu.Lock()
	defer baseMu.Unlock()
	if file != nil {
		base.SetOutput(out)
		file.Close()
		file = nil
	}
}

// SetOutput меняет основной вывод логов (по умолчанию stdout).
// Открытый через Init файл логов продолжает получать копию.
func SetOutput(w io.Writer) {
	baseMu.Lock()
	defer baseMu.Unlock()
	out = w
	if file != nil {
		base.SetOutput(io.MultiWriter(out, file))
		return
	}
	base.SetOutput(out)
}

// SetLevel меняет минимальный уровень для всех компонентов
func SetLevel(l LogLevel) {
	base.SetLevel(l.logrus())
}

func newLogger(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

// With возвращает логгер с дополнительным полем
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Trace(format string, args ...interface{}) { l.entry.Tracef(format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Enabled сообщает, будет ли записано сообщение уровня level
func (l *Logger) Enabled(level LogLevel) bool {
	return l.entry.Logger.IsLevelEnabled(level.logrus())
}

// Функции пакета пишут без поля component
func Trace(format string, args ...interface{}) { base.Tracef(format, args...) }
func Debug(format string, args ...interface{}) { base.Debugf(format, args...) }
func Info(format string, args ...interface{})  { base.Infof(format, args...) }
func Warn(format string, args ...interface{})  { base.Warnf(format, args...) }
func Error(format string, args ...interface{}) { base.Errorf(format, args...) }
