package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var Log zerolog.Logger

// InitLogger sets up the process logger writing to both stdout and
// logs/server.log. Extra writers (e.g. the S3 shipper) are appended to the
// multi-writer when provided.
func InitLogger(extra ...io.Writer) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		panic(err)
	}

	file, err := os.OpenFile("logs/server.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(err)
	}

	writers := append([]io.Writer{os.Stdout, file}, extra...)
	multi := zerolog.MultiLevelWriter(writers...)

	Log = zerolog.New(multi).With().Timestamp().Str("service", "notehive-api").Logger()
}
