package protocol

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/javanhut/corelsp/internal/logging"
)

// Transport defines the interface for message transport
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// StdioTransport implements Transport using stdio
type StdioTransport struct {
	reader io.Reader
	writer io.Writer
	ctx    context.Context
}

// NewStdioTransport creates a new stdio transport
func NewStdioTransport(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: reader,
		writer: writer,
		ctx:    context.Background(),
	}
}

// NewStdioTransportWithContext creates a new stdio transport with context
func NewStdioTransportWithContext(ctx context.Context, reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: reader,
		writer: writer,
		ctx:    ctx,
	}
}

// ReadMessage reads a message from the transport using LSP protocol
func (t *StdioTransport) ReadMessage() ([]byte, error) {
	// Check context cancellation
	select {
	case <-t.ctx.Done():
		return nil, t.ctx.Err()
	default:
	}

	reader := bufio.NewReader(t.reader)
	headers := make(map[string]string)
	headerCount := 0

	// Read headers line by line
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "error reading headers")
		}

		// Remove CRLF or LF
		line = strings.TrimRight(line, "\r\n")

		// Empty line indicates end of headers
		if line == "" {
			break
		}

		// Security check: prevent too many headers
		headerCount++
		if headerCount > MaxHeaderCount {
			logging.Get().Warn().Int("count", headerCount).Int("limit", MaxHeaderCount).Msg("rejecting message with too many headers")
			return nil, errors.Errorf("too many headers: %d exceeds limit of %d", headerCount, MaxHeaderCount)
		}

		// Security check: prevent oversized headers
		if len(line) > MaxHeaderSize {
			return nil, errors.Errorf("header too large: %d bytes exceeds limit of %d", len(line), MaxHeaderSize)
		}

		// Parse header
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("malformed header: %s", line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		headers[key] = value
	}

	// Get content length
	contentLengthStr, ok := headers["Content-Length"]
	if !ok {
		return nil, errors.New("missing Content-Length header")
	}

	contentLength, err := strconv.Atoi(contentLengthStr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid Content-Length: %s", contentLengthStr)
	}

	// Security check: prevent oversized content
	if contentLength > MaxRequestSize {
		logging.Get().Warn().Int("bytes", contentLength).Int("limit", MaxRequestSize).Msg("rejecting oversized message body")
		return nil, errors.Errorf("content too large: %d bytes exceeds limit of %d", contentLength, MaxRequestSize)
	}

	if contentLength < 0 {
		return nil, errors.Errorf("invalid Content-Length: %d", contentLength)
	}

	// Read the content
	content := make([]byte, contentLength)
	_, err = io.ReadFull(reader, content)
	if err != nil {
		return nil, errors.Wrap(err, "error reading content")
	}

	return content, nil
}

// WriteMessage writes a message to the transport using LSP protocol
func (t *StdioTransport) WriteMessage(data []byte) error {
	// Check context cancellation
	select {
	case <-t.ctx.Done():
		return t.ctx.Err()
	default:
	}

	// Write headers
	header := []byte("Content-Length: " + strconv.Itoa(len(data)) + "\r\n\r\n")
	if _, err := t.writer.Write(header); err != nil {
		return errors.Wrap(err, "error writing header")
	}

	// Write content
	if _, err := t.writer.Write(data); err != nil {
		return errors.Wrap(err, "error writing content")
	}

	return nil
}

// Close closes the transport
func (t *StdioTransport) Close() error {
	// For stdio, we don't actually close the streams
	// They are managed by the OS
	return nil
}
