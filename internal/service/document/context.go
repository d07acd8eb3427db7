package document

import (
	"sync"
	"time"
)

// Active is the document currently attached to new prompts.
type Active struct {
	Name       string    `json:"name"`
	MIME       string    `json:"mime"`
	Pages      int       `json:"pages"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploadedAt"`
	text       string
}

// Text returns the extracted text.
func (a Active) Text() string { return a.text }

// Context holds at most one active document. An upload replaces it wholesale.
type Context struct {
	mu     sync.RWMutex
	active *Active
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// Set activates the extraction. A failed extraction activates an empty document
// so the previous one never leaks into later prompts.
func (c *Context) Set(ex Extraction) Active {
	active := Active{
		Name:       ex.Name,
		MIME:       ex.MIME,
		Pages:      ex.Pages,
		Chars:      len(ex.Text),
		UploadedAt: time.Now(),
		text:       ex.Text,
	}

	c.mu.Lock()
	c.active = &active
	c.mu.Unlock()
	return active
}

// Clear removes the active document.
func (c *Context) Clear() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// Current returns the active document, if any.
func (c *Context) Current() (Active, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return Active{}, false
	}
	return *c.active, true
}

// Text returns the active document text or "".
func (c *Context) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return ""
	}
	return c.active.text
}
