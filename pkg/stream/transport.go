package stream

// Transport delivers incremental generation output to a client. Implementations
// are not safe for concurrent use; a transport belongs to a single request.
type Transport interface {
	// WriteChunk forwards one batch of generated text to the client.
	WriteChunk(chunk string) error

	// WriteError reports a terminal failure to the client.
	WriteError(message string) error

	// Done signals that the response is complete.
	Done() error
}

// Capture wraps a Transport and accumulates everything written through it,
// so the full answer is available for persistence after streaming ends.
type Capture struct {
	inner Transport
	buf   []byte
}

func NewCapture(inner Transport) *Capture {
	return &Capture{inner: inner}
}

func (c *Capture) WriteChunk(chunk string) error {
	c.buf = append(c.buf, chunk...)
	return c.inner.WriteChunk(chunk)
}

func (c *Capture) WriteError(message string) error {
	return c.inner.WriteError(message)
}

func (c *Capture) Done() error {
	return c.inner.Done()
}

// Content returns the accumulated response text.
func (c *Capture) Content() string {
	return string(c.buf)
}

// Reset discards everything captured so far. Chunks already forwarded to the
// inner transport are not recalled; only the accumulated copy is dropped.
func (c *Capture) Reset() {
	c.buf = c.buf[:0]
}
