package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger 返回带完整时间戳的文本日志，无法识别的级别按 info 处理。
func newLogger(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
