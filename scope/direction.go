package scope

// Direction is the side of the selection a scan walks towards.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

func (d Direction) step() int {
	if d == Left {
		return -1
	}
	return 1
}

// seeks returns the kind of r if it is a bracket that can enclose the
// selection from this side: an opener on the left, a closer on the right.
func (d Direction) seeks(r rune) (Kind, bool) {
	if d == Left {
		return openKind(r)
	}
	return closeKind(r)
}

// nests returns the kind of r if it is a bracket that opens a nested pair
// as seen from this side.
func (d Direction) nests(r rune) (Kind, bool) {
	if d == Left {
		return closeKind(r)
	}
	return openKind(r)
}

func inBounds(text []rune, i int) bool {
	return i >= 0 && i < len(text)
}
