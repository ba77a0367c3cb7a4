package input

import "sync"

// Lazy builds a Driver on first use and keeps it, or the construction error,
// for the life of the process.
type Lazy struct {
	once    sync.Once
	factory func() (Driver, error)
	driver  Driver
	err     error
}

// NewLazy wraps factory. It is called at most once.
func NewLazy(factory func() (Driver, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Driver returns the cached driver, constructing it on the first call.
func (l *Lazy) Driver() (Driver, error) {
	l.once.Do(func() {
		if l.factory == nil {
			l.err = ErrNoDisplay
			return
		}
		l.driver, l.err = l.factory()
	})
	return l.driver, l.err
}
