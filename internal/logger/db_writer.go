package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	Caller    string
	SessionID string
	UserID    string
	Resource  string
	Error     string
	Time      time.Time
}

// Log is the stored form of a LogEntry
type Log struct {
	AppID      string    `bson:"app_id" json:"app_id"`
	Message    string    `bson:"message" json:"message"`
	LogLevelId int       `bson:"log_level_id" json:"log_level_id"`
	Caller     string    `bson:"caller,omitempty" json:"caller,omitempty"`
	SessionID  string    `bson:"session_id,omitempty" json:"session_id,omitempty"`
	UserID     string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Resource   string    `bson:"resource,omitempty" json:"resource,omitempty"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Sink persists one log record
type Sink interface {
	Insert(ctx context.Context, rec Log) error
}

type mongoSink struct {
	collection *mongo.Collection
	appID      string
}

// NewMongoSink stores log records in collection
func NewMongoSink(collection *mongo.Collection, appID string) Sink {
	return &mongoSink{collection: collection, appID: appID}
}

func (s *mongoSink) Insert(ctx context.Context, rec Log) error {
	rec.AppID = s.appID
	_, err := s.collection.InsertOne(ctx, rec)
	return err
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    Sink
	logChan chan LogEntry
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDBLogWriter starts the background worker
func NewDBLogWriter(sink Sink, buffer int) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, buffer),
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by the zap core; it never blocks
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.logChan <- entry:
	default:
		fmt.Fprintln(os.Stderr, "DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the queue to drain
func (w *DBLogWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.logChan)
	w.mu.Unlock()
	<-w.done
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		rec := Log{
			Message:    entry.Message,
			LogLevelId: mapLevelToInt(entry.Level),
			Caller:     entry.Caller,
			SessionID:  entry.SessionID,
			UserID:     entry.UserID,
			Resource:   entry.Resource,
			Error:      entry.Error,
			CreatedAt:  entry.Time.UTC(),
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}

		// A failed insert must not take the API down
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.sink.Insert(ctx, rec); err != nil {
			fmt.Fprintln(os.Stderr, "DB log insert failed:", err)
		}
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
