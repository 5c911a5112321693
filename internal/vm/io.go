package vm

// Source supplies input once the queued values run out. Returning io.EOF
// means no more input; the VM then faults with ErrReadOutOfInput.
type Source interface {
	Next() (int64, error)
}

type SourceFunc func() (int64, error)

func (f SourceFunc) Next() (int64, error) { return f() }

// Sink receives every output value as it is produced, in addition to the
// VM's own output buffer.
type Sink interface {
	Emit(v int64) error
}

type SinkFunc func(int64) error

func (f SinkFunc) Emit(v int64) error { return f(v) }
