package ports

// Notifier carries transient, user-visible success and error messages.
// Implementations decide how long a message lives and where it renders; the
// core only decides when one is emitted.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards all notifications. Useful in tests and batch commands.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
