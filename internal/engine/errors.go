package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkerPanic воркер тика завершился паникой
	ErrWorkerPanic = errors.New("engine: worker panicked")
	// ErrNilRule тик вызван без правила
	ErrNilRule = errors.New("engine: nil rule")
)

// WorkerError описывает упавший воркер. Тик с такой ошибкой не применяется.
type WorkerError struct {
	Worker int
	Span   Span
	Value  interface{}
	Stack  []byte
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("engine: worker %d [%d,%d) panicked: %v", e.Worker, e.Span.Start, e.Span.End, e.Value)
}

func (e *WorkerError) Unwrap() error { return ErrWorkerPanic }
