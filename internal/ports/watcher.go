package ports

// Watcher monitors the corpus source file and triggers a reload.
// Editors often replace files by rename, so the adapter watches the parent
// directory and filters events down to the one file. Only one Watch call
// should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the path after
	// each burst of writes settles. The callback may be invoked from any
	// goroutine. Returns an error if the parent directory doesn't exist or
	// permissions are insufficient.
	Watch(path string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
