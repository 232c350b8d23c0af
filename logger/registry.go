package logger

import "sync"

// named holds loggers registered per component.
var named sync.Map

// Register installs l as the logger for component name.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Unregister removes the logger for component name.
func Unregister(name string) {
	named.Delete(name)
}

// Get returns the logger registered for name. Unregistered names get the
// current global logger tagged with the component, so Get can be called
// before Init without caching a stale default.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
