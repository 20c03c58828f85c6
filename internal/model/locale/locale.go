package locale

// Context is the resolved language and cultural variant for a session.
// It is attached once at resolution time and immutable afterwards; a later
// request on the same session may re-resolve and replace it wholesale.
type Context struct {
	Locale     string `json:"locale"`
	Variant    string `json:"variant"`
	PromptHint string `json:"promptHint,omitempty"`
}
