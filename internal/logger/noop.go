package logger

// Noop discards every message.
type Noop struct{}

// NewNoop returns a logger that discards everything.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Debug(msg string, args ...interface{}) {}
func (*Noop) Info(msg string, args ...interface{})  {}
func (*Noop) Warn(msg string, args ...interface{})  {}
func (*Noop) Error(msg string, args ...interface{}) {}

// WithComponent returns l.
func (l *Noop) WithComponent(component string) Logger { return l }
