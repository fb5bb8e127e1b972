package port

// FileWalker lists corpus files under a root directory.
type FileWalker interface {
	Walk(root string) ([]string, error)
}
