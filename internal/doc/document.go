package doc

// Role is the logical role of a Document snapshot.
type Role int

const (
	// RoleCurrent is the live, possibly edited snapshot.
	RoleCurrent Role = iota + 1
	// RoleBaseline is the last loaded or saved snapshot used as the diff reference.
	RoleBaseline
)

func (r Role) String() string {
	switch r {
	case RoleCurrent:
		return "current"
	case RoleBaseline:
		return "baseline"
	default:
		return "unknown"
	}
}

// Document is an immutable snapshot: a root node plus its role.
// Every edit produces a new Document; a snapshot stays valid after later edits.
type Document struct {
	Root Node
	Role Role
	Name string // Display name of the source, e.g. a file name
}

// NewDocument creates a Document snapshot.
func NewDocument(root Node, role Role, name string) *Document {
	return &Document{Root: root, Role: role, Name: name}
}

// As returns a snapshot of the same tree under another role. The tree is shared;
// nodes are immutable so sharing is safe.
func (d *Document) As(role Role) *Document {
	return &Document{Root: d.Root, Role: role, Name: d.Name}
}

// WithRoot returns a snapshot with the same role and name and a new root.
func (d *Document) WithRoot(root Node) *Document {
	return &Document{Root: root, Role: d.Role, Name: d.Name}
}

// Lookup follows segments through nested mappings. Sequences are atomic, so a
// segment never indexes into one.
func Lookup(root Node, segments []string) (Node, bool) {
	cur := root
	for _, seg := range segments {
		m, ok := cur.(*Mapping)
		if !ok {
			return nil, false
		}
		if cur, ok = m.Get(seg); !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}
