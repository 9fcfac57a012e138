package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// ErrClipboardUnsupported is returned when no clipboard tool is available
var ErrClipboardUnsupported = errors.New("clipboard is not supported on this system")

// ShareURL returns the public page link for a title
func ShareURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/content/" + url.PathEscape(id)
}

// Sharer copies or opens links
type Sharer struct {
	copy        func(string) error
	open        func(string) error
	unsupported bool
}

// NewSharer uses the system clipboard and browser
func NewSharer() *Sharer {
	return &Sharer{
		copy:        clipboard.WriteAll,
		open:        browser.OpenURL,
		unsupported: clipboard.Unsupported,
	}
}

// Copy writes link to the clipboard
func (s *Sharer) Copy(link string) error {
	if s.unsupported {
		return ErrClipboardUnsupported
	}
	if err := s.copy(link); err != nil {
		return fmt.Errorf("failed to copy link: %w", err)
	}
	return nil
}

// Open opens link in the default browser
func (s *Sharer) Open(link string) error {
	if err := s.open(link); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
