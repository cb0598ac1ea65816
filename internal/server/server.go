// Package server runs the line-delimited JSON command loop on a pair of
// streams, one response line per request line.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fmueller/voxserve/internal/transcribe"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transcriber is the part of the transcription service the loop depends on.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, cleanupPrompt string) (transcribe.Response, error)
}

type Server struct {
	transcriber Transcriber
	logger      *zap.Logger
}

func New(transcriber Transcriber, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{transcriber: transcriber, logger: logger}
}

// Run processes in line by line until a quit request or end of input. Every
// line, including malformed ones, yields exactly one flushed response line.
// Only read and write failures on the streams end the loop with an error.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)

	s.logger.Info("transcription server started and listening for commands")
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read request: %w", readErr)
		}
		if readErr != nil && line == "" {
			s.logger.Info("input closed, shutting down")
			return nil
		}

		resp, quit := s.handleLine(ctx, line)
		if err := writeLine(writer, resp); err != nil {
			return err
		}
		if quit {
			return nil
		}
		if readErr != nil {
			s.logger.Info("input closed, shutting down")
			return nil
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line string) (resp any, quit bool) {
	logger := s.logger.With(zap.String("request_id", uuid.NewString()))
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("unexpected server error", zap.Any("panic", rec))
			resp, quit = errorf(fmt.Sprintf("Server error: %v", rec)), false
		}
	}()

	trimmed := strings.TrimSpace(line)
	logger.Info("received command", zap.String("line", trimmed))

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		logger.Error("json decode error", zap.Error(err))
		return errorf("Invalid JSON: " + err.Error()), false
	}

	req, err := decodeRequest(raw)
	if err != nil {
		logger.Error("malformed request", zap.Error(err))
		return errorf("Server error: " + err.Error()), false
	}

	resp, quit = s.dispatch(ctx, logger, req)
	logger.Info("sending response", zap.Any("response", resp))
	return resp, quit
}

func (s *Server) dispatch(ctx context.Context, logger *zap.Logger, req Request) (any, bool) {
	action := req.ActionName()
	logger.Info("processing action", zap.String("action", action))

	switch action {
	case ActionTranscribe:
		audioPath, err := req.AudioPath()
		if err != nil {
			logger.Error("transcribe command has invalid audio_path", zap.Error(err))
			return errorf("Transcription failed: " + err.Error()), false
		}
		if audioPath == "" {
			logger.Error("transcribe command missing audio_path parameter")
			return errorf("Missing audio_path parameter"), false
		}
		cleanupPrompt, err := req.CleanupPrompt()
		if err != nil {
			logger.Warn("ignoring cleanup_prompt, using default prompt", zap.Error(err))
			cleanupPrompt = ""
		}
		resp, err := s.transcriber.Transcribe(ctx, audioPath, cleanupPrompt)
		if err != nil {
			return errorf(err.Error()), false
		}
		return resp, false
	case ActionPing:
		return messageResponse{Success: true, Message: "pong"}, false
	case ActionQuit:
		logger.Info("quit command received")
		return messageResponse{Success: true, Message: "Shutting down"}, true
	default:
		logger.Warn("unknown action received", zap.String("action", action))
		return errorf("Unknown action: " + action), false
	}
}

// WriteStartupError emits the single response sent when the server cannot
// start.
func WriteStartupError(out io.Writer, err error) error {
	writer := bufio.NewWriter(out)
	return writeLine(writer, errorf("Server startup failed: "+err.Error()))
}

// writeLine encodes resp as one JSON line and flushes it. HTML escaping is
// off so transcripts keep characters like < and & readable.
func writeLine(w *bufio.Writer, resp any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(resp); err != nil {
		var marshalErr *json.UnsupportedValueError
		if !errors.As(err, &marshalErr) {
			return fmt.Errorf("write response: %w", err)
		}
		if err := enc.Encode(errorf("Server error: " + err.Error())); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}
