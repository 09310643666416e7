package apiclient

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FileToken keeps the bearer token in a file readable only by its owner.
type FileToken struct {
	Path string

	mu     sync.Mutex
	cached *string
}

func (f *FileToken) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil {
		return *f.cached
	}
	data, err := os.ReadFile(f.Path)
	tok := ""
	if err == nil {
		tok = strings.TrimSpace(string(data))
	}
	f.cached = &tok
	return tok
}

func (f *FileToken) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrap(err, "create token directory")
	}
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "write token")
	}
	f.cached = &token
	return nil
}

func (f *FileToken) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	empty := ""
	f.cached = &empty
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token")
	}
	return nil
}
