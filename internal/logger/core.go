package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore wraps a console core and copies every entry to the DB writer
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

// NewDBCore wraps baseCore so its entries also reach writer
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps fields added through logger.With visible to Write
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: append(append([]zapcore.Field(nil), c.fields...), fields...),
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	logEntry := LogEntry{
		Level:   entry.Level,
		Message: entry.Message,
		Caller:  entry.Caller.Function,
		Time:    entry.Time,
	}

	all := append(append([]zapcore.Field(nil), c.fields...), fields...)
	for _, f := range all {
		switch f.Key {
		case "session_id":
			logEntry.SessionID = f.String
		case "user_id":
			logEntry.UserID = f.String
		case "resource":
			logEntry.Resource = f.String
		case "error":
			if err, ok := f.Interface.(error); ok && err != nil {
				logEntry.Error = err.Error()
			}
		}
	}

	c.writer.AddLog(logEntry)

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
