package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = New(os.Stdout, logrus.InfoLevel)

// New builds a JSON logger writing to out.
func New(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

func Init() {
	InitWithLevel(os.Getenv("LOG_LEVEL"))
}

// InitWithLevel resets the package logger. Unknown levels fall back to info.
func InitWithLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log = New(os.Stdout, lvl)
}

// SetOutput redirects the package logger; used by tests.
func SetOutput(out io.Writer, level logrus.Level) {
	log = New(out, level)
}

// Info logs msg with optional key/value pairs: Info("paid", "user_id", id).
func Info(msg string, kv ...interface{}) {
	entry(kv).Info(msg)
}

func Infof(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Warn(msg string, kv ...interface{}) {
	entry(kv).Warn(msg)
}

func Warnf(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

func Error(msg string, kv ...interface{}) {
	entry(kv).Error(msg)
}

func Errorf(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	entry(kv).Debug(msg)
}

func Debugf(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Fatal(msg string, kv ...interface{}) {
	entry(kv).Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

func entry(kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fields[key] = "(MISSING)"
			break
		}
		fields[key] = kv[i+1]
	}
	return log.WithFields(fields)
}
