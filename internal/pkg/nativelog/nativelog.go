package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogDir overrides the directory daily log files are written to.
const EnvLogDir = "ECHOMEET_LOG_DIR"

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// ResolveDir picks the directory for daily log files: the env override if
// set, then ~/.echomeet/log, then ./logs relative to the working directory.
func ResolveDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".echomeet", "log")
	}
	return filepath.Join(".", "logs")
}

// Filename returns the daily log filename for the given day.
func Filename(now time.Time) string {
	return "server_" + now.Format("2006-01-02") + ".log"
}

// dailyWriter appends to one file per calendar day, reopening on rollover.
type dailyWriter struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
}

func newDailyWriter() (*dailyWriter, error) {
	dir := ResolveDir()
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &dailyWriter{dir: dir}, nil
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := time.Now().Format("2006-01-02")
	if w.file == nil || day != w.day {
		if w.file != nil {
			_ = w.file.Close()
		}
		file, err := os.OpenFile(
			filepath.Join(w.dir, Filename(time.Now())),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			filePerm,
		)
		if err != nil {
			return 0, err
		}
		w.file = file
		w.day = day
	}
	return w.file.Write(p)
}

func (w *dailyWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// NewZapLogger builds the process logger: console encoding teed to stdout
// and to the daily log file, with stack traces from error level up.
func NewZapLogger() (*zap.Logger, error) {
	writer, err := newDailyWriter()
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(encoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
