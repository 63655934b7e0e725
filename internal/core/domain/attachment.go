package domain

import (
	"path/filepath"
	"strings"
)

// Attachment is a file riding along with a form: either freshly picked
// content, or (in edit mode) a reference to a document the marketplace
// already stores. Both may be absent, which the validation gate rejects for
// forms that require one.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
	Existing    *FileRef
}

// HasNewContent reports whether the attachment carries freshly picked bytes.
func (a Attachment) HasNewContent() bool {
	return len(a.Content) > 0 && a.FileName != ""
}

// Present reports whether either new content or a stored reference exists.
func (a Attachment) Present() bool {
	return a.HasNewContent() || a.Existing != nil
}

// Size returns the byte size of the new content, 0 when none was picked.
func (a Attachment) Size() int64 {
	return int64(len(a.Content))
}

// Ext returns the lowercase file extension of the new content, "" when none.
func (a Attachment) Ext() string {
	return strings.ToLower(filepath.Ext(a.FileName))
}
