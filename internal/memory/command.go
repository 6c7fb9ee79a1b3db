package memory

// Command is a remembered shell command.
type Command struct {
	Header
	Command     string `json:"command"`
	Description string `json:"description"`
	// Context is free text describing where the command came from. It is
	// stored but not searched.
	Context string `json:"context,omitempty"`
}

func (c *Command) clone() *Command {
	cp := *c
	cp.Header = c.Header.clone()
	return &cp
}

func (c *Command) defaults() {
	applyHeaderDefaults(&c.Header)
}

func applyHeaderDefaults(h *Header) {
	if h.Category == "" {
		h.Category = DefaultCategory
	}
	if h.Tags == nil {
		h.Tags = []string{}
	}
}

// CommandSchema weights the command text above its description, with tags
// and category as weak signals.
var CommandSchema = Schema[*Command]{
	Kind: "commands",
	Fields: []Field[*Command]{
		{Name: "command", Weight: 3, Values: text(func(c *Command) string { return c.Command })},
		{Name: "description", Weight: 2, Values: text(func(c *Command) string { return c.Description })},
		tagsField[*Command](1),
		categoryField[*Command](1),
	},
}

// CommandPatch holds the fields to overwrite in a command. Nil fields are
// left untouched; a non-nil empty Tags clears the tags.
type CommandPatch struct {
	Command     *string
	Description *string
	Context     *string
	Category    *string
	Tags        []string
}

// Apply implements Patch.
func (p CommandPatch) Apply(c *Command) {
	if p.Command != nil {
		c.Command = *p.Command
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Context != nil {
		c.Context = *p.Context
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
}

// CommandStore is the store of remembered commands.
type CommandStore struct {
	*Store[*Command]
}

// NewCommandStore creates a command store persisted through backend.
func NewCommandStore(backend Backend[*Command], opts ...Option) *CommandStore {
	return &CommandStore{Store: New(CommandSchema, backend, opts...)}
}
