package mode

// Mode names the search paths that contributed results to a response.
type Mode string

// Search type constants. Keyword keeps the catalog backend's historical label.
const (
	// Hybrid means both the keyword and the vector path returned hits.
	Hybrid  Mode = "hybrid (mongodb+vector)"
	Keyword Mode = "mongodb"
	Vector  Mode = "vector"
	// None means neither path returned anything.
	None Mode = "none"
)

// FromPaths derives the search type from which paths produced results.
func FromPaths(keyword, vector bool) Mode {
	switch {
	case keyword && vector:
		return Hybrid
	case keyword:
		return Keyword
	case vector:
		return Vector
	default:
		return None
	}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Keyword || m == Vector || m == None
}

// String returns the wire label.
func (m Mode) String() string { return string(m) }
