package dooray

import "encoding/json"

// envelope is the shape every Dooray JSON response shares: a header block
// plus the actual payload under "result".
type envelope struct {
	Result     json.RawMessage `json:"result"`
	TotalCount int             `json:"totalCount"`
}

// Body is the mime-typed content block used by tasks and comments.
type Body struct {
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// LocalizedName is one entry of a workflow's per-locale display names.
type LocalizedName struct {
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// Workflow is a named state in a project's task pipeline. Class is a coarse
// bucket (open/working/closed); Order breaks ties between workflows sharing
// a class. Order is declared as any because the API has been observed to
// return it as a number, a numeric string, or garbage; orderValue applies
// the lenient reading.
type Workflow struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Names []LocalizedName `json:"names"`
	Class string          `json:"class"`
	Order any             `json:"order"`
}

// Tag is a project-scoped label. Name uniqueness is assumed, not enforced.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TaskDetail is the subset of a task response the adapter itself reads:
// just enough for tag read-modify-write.
type TaskDetail struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    *Body  `json:"body"`
	Tags    []Tag  `json:"tags"`
}

// FileMetadata is the subset of a file metadata response used to name
// downloaded content on disk.
type FileMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// TaskUpdate is a partial task mutation. The Dooray API clears subject and
// body when a PUT omits them, so any caller mutating tagIds or workflowId
// must resend the current Subject and Body alongside the change. TagIDs is
// a pointer so an empty set (detaching the last tag) still serializes as []
// instead of being omitted.
type TaskUpdate struct {
	Subject    string     `json:"subject,omitempty"`
	Body       *Body      `json:"body,omitempty"`
	Users      []TaskUser `json:"users,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	TagIDs     *[]string  `json:"tagIds,omitempty"`
	WorkflowID string     `json:"workflowId,omitempty"`
}

// TaskUser assigns a member to a task.
type TaskUser struct {
	Member MemberRef `json:"member"`
}

// MemberRef references a member by ID inside a task payload.
type MemberRef struct {
	ID string `json:"id"`
}
