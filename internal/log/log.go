package log

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}
	ts := entry.Time.Format("2006-01-02 15:04:05")
	b.WriteString(fmt.Sprintf("[%s][%s]: %s\n", ts, strings.ToUpper(entry.Level.String()), entry.Message))
	return b.Bytes(), nil
}

// SetLogConf configures the process-wide logger. Unknown levels fall back
// to info.
func SetLogConf(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&lineFormatter{})
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func Debugf(format string, args ...any) { logrus.Debugf(format, args...) }

func Infof(format string, args ...any) { logrus.Infof(format, args...) }

func Warnf(format string, args ...any) { logrus.Warnf(format, args...) }

func Errorf(format string, args ...any) { logrus.Errorf(format, args...) }
