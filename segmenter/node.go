package segmenter

// NodeType classifies a lattice node.
type NodeType uint8

const (
	// NormalNode is an ordinary word node.
	NormalNode NodeType = iota
	// BOSNode marks the beginning of the sentence.
	BOSNode
	// EOSNode marks the end of the sentence.
	EOSNode
	// ConstrainedNode is a node fixed by the user.
	ConstrainedNode
	// HistoryNode carries context from a previous conversion.
	HistoryNode
)

// Attribute is a bit set of lexical node attributes.
type Attribute uint32

const (
	// SystemDictionary marks words from the system dictionary.
	SystemDictionary Attribute = 1 << iota
	// UserDictionary marks words from the user dictionary.
	UserDictionary
	// NoVariantsExpansion disables variant expansion for the node.
	NoVariantsExpansion
	// StartsWithParticle marks a node whose key begins with a particle.
	StartsWithParticle
	// SpellingCorrection marks a node produced by spelling correction.
	SpellingCorrection
)

// Has reports whether all bits of a are set.
func (at Attribute) Has(a Attribute) bool {
	return at&a == a
}

// Node is the part of a lattice node the segmenter looks at.
type Node struct {
	Lid        uint16
	Rid        uint16
	Type       NodeType
	Attributes Attribute
}
