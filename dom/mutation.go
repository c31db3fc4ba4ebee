package dom

// Mutation is a single change emitted by the virtual tree's diff.
type Mutation interface {
	mutation()
}

// Mutations is one diff batch, applied in order.
type Mutations []Mutation

// CreateElement inserts a new element under Parent. Index < 0 appends.
type CreateElement struct {
	ID     NodeID
	Parent NodeID
	Tag    string
	Index  int
}

// CreateText inserts a text leaf under Parent. Index < 0 appends.
type CreateText struct {
	ID     NodeID
	Parent NodeID
	Text   string
	Index  int
}

// Remove deletes a node and its subtree.
type Remove struct {
	ID NodeID
}

// SetAttribute changes one attribute of a node.
type SetAttribute struct {
	ID    NodeID
	Name  string
	Value string
}

// SetText replaces the content of a text leaf.
type SetText struct {
	ID   NodeID
	Text string
}

func (CreateElement) mutation() {}
func (CreateText) mutation()    {}
func (Remove) mutation()        {}
func (SetAttribute) mutation()  {}
func (SetText) mutation()       {}
