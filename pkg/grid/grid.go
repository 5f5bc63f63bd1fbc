package grid

// GetGridCoords converts a row-major cell index into (x, y) for a grid that
// is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}
