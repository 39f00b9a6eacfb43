package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ewaste-server-go/src/configs"
)

// LogLevel 日志级别
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

var levelRank = map[LogLevel]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

// Fields are structured key/values attached to a log entry.
type Fields map[string]interface{}

// Logger writes JSON lines to the log file and a short line to the console.
type Logger struct {
	min     LogLevel
	mu      sync.Mutex
	logFile *os.File
	file    io.Writer
	console io.Writer
}

// LogEntry 日志条目结构
type LogEntry struct {
	Time    string   `json:"time"`
	Level   LogLevel `json:"level"`
	Tag     string   `json:"tag,omitempty"`
	Message string   `json:"message"`
	Fields  Fields   `json:"fields,omitempty"`
}

// NewLogger 创建新的日志记录器. An empty log_dir logs to the console only.
func NewLogger(config *configs.LogConfig) (*Logger, error) {
	l := &Logger{
		min:     parseLevel(config.LogLevel),
		console: os.Stdout,
	}
	if config.LogDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	name := config.LogFile
	if name == "" {
		name = "server.log"
	}
	file, err := os.OpenFile(filepath.Join(config.LogDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.logFile = file
	l.file = file
	return l, nil
}

// NewWriterLogger logs JSON lines to w only; used by tests and tools.
func NewWriterLogger(level string, w io.Writer) *Logger {
	return &Logger{min: parseLevel(level), file: w}
}

func parseLevel(s string) LogLevel {
	lvl := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelRank[lvl]; ok {
		return lvl
	}
	return InfoLevel
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) enabled(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.min]
}

func (l *Logger) log(level LogLevel, tag string, msg string, fields []Fields) {
	if !l.enabled(level) {
		return
	}
	now := time.Now().Format("2006-01-02 15:04:05.000")
	entry := LogEntry{
		Time:    now,
		Level:   level,
		Tag:     tag,
		Message: msg,
	}
	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal log entry: %v\n", err)
			return
		}
		if _, err := l.file.Write(append(data, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "write log: %s %v\n", msg, err)
		}
	}

	if l.console != nil {
		if tag != "" {
			fmt.Fprintf(l.console, "[%s] [%s] [%s] %s\n", now, level, tag, msg)
		} else {
			fmt.Fprintf(l.console, "[%s] [%s] %s\n", now, level, msg)
		}
	}
}

// Debug 记录调试级别日志
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(DebugLevel, "", msg, fields)
}

// Info 记录信息级别日志
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(InfoLevel, "", msg, fields)
}

// Warn 记录警告级别日志
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(WarnLevel, "", msg, fields)
}

// Error 记录错误级别日志
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(ErrorLevel, "", msg, fields)
}

// TaggedLogger prefixes every entry with a component tag.
type TaggedLogger struct {
	*Logger
	tag string
}

// WithTag 创建带标签的日志记录器
func (l *Logger) WithTag(tag string) *TaggedLogger {
	return &TaggedLogger{
		Logger: l,
		tag:    tag,
	}
}

func (l *TaggedLogger) Debug(msg string, fields ...Fields) {
	l.log(DebugLevel, l.tag, msg, fields)
}

func (l *TaggedLogger) Info(msg string, fields ...Fields) {
	l.log(InfoLevel, l.tag, msg, fields)
}

func (l *TaggedLogger) Warn(msg string, fields ...Fields) {
	l.log(WarnLevel, l.tag, msg, fields)
}

func (l *TaggedLogger) Error(msg string, fields ...Fields) {
	l.log(ErrorLevel, l.tag, msg, fields)
}
