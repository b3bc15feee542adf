package llmcall

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/jackzampolin/docsmith/internal/providers"
)

// Recorder logs every LLM call and, when a sink is configured, appends it
// as one JSON line. A nil *Recorder records nothing.
type Recorder struct {
	logger *slog.Logger

	mu   sync.Mutex
	sink io.Writer
}

// NewRecorder creates a new LLM call recorder. sink may be nil.
func NewRecorder(logger *slog.Logger, sink io.Writer) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger, sink: sink}
}

// Record captures an LLM call.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) *Call {
	call := FromChatResult(result, opts)
	r.RecordCall(call)
	return call
}

// RecordCall captures an already-constructed Call. Sink write failures are
// logged and otherwise ignored.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || call == nil {
		return
	}

	level := slog.LevelInfo
	if !call.Success {
		level = slog.LevelWarn
	}
	r.logger.LogAttrs(context.Background(), level, "llm call", call.LogAttrs()...)
	r.logger.Debug("llm response", "id", call.ID, "response", call.Response)

	if r.sink == nil {
		return
	}
	line, err := json.Marshal(call)
	if err != nil {
		r.logger.Warn("failed to encode llm call", "id", call.ID, "error", err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.sink.Write(append(line, '\n')); err != nil {
		r.logger.Warn("failed to write llm call", "id", call.ID, "error", err)
	}
}
