package domain

// ResultType is the content kind of a normalized result. It drives iconography
// and the snippet strategy.
type ResultType string

const (
	ResultTypeUnknown     ResultType = ""
	ResultTypeWikiPage    ResultType = "wiki-page"
	ResultTypeChatMessage ResultType = "chat-message"
)

// Ancestor is one step of a containment path, root first.
type Ancestor struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SearchResult is the canonical result shape every backend is normalized into.
// Pointer fields are unset when the source did not provide them, which is not
// the same as an empty value.
type SearchResult struct {
	Link           string     `json:"link"`
	Title          *string    `json:"title,omitempty"`
	Content        *string    `json:"content,omitempty"`
	Type           ResultType `json:"type"`
	Email          *string    `json:"email,omitempty"`
	CreationTime   *string    `json:"creationTime,omitempty"`
	LastUpdateTime *string    `json:"lastUpdateTime,omitempty"`
	Ancestors      []Ancestor `json:"ancestors,omitempty"`
}

// DisplayTime returns the single date line shown for a result. The update time
// wins over the creation time.
func (r SearchResult) DisplayTime() string {
	if r.LastUpdateTime != nil {
		return "Updated " + *r.LastUpdateTime
	}
	if r.CreationTime != nil {
		return "Created " + *r.CreationTime
	}
	return ""
}

// QueryOutcome is produced once per dispatch. A nil Results means no
// successful response yet; an empty slice means zero matches.
type QueryOutcome struct {
	Results  []SearchResult `json:"results"`
	Duration *float64       `json:"duration"`
}

// Resolved reports whether the outcome holds a successful response.
func (o QueryOutcome) Resolved() bool {
	return o.Results != nil
}

// Size returns the number of results, or -1 when unresolved.
func (o QueryOutcome) Size() int {
	if o.Results == nil {
		return -1
	}
	return len(o.Results)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
