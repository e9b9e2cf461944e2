package gifwall

// interlacePasses holds the (first row, row step) of each of the four
// passes an interlaced image is stored in.
var interlacePasses = [4]struct{ start, step int }{
	{0, 8}, {4, 8}, {2, 4}, {1, 2},
}

// interlaceRows returns, for each row in stream order, the image row it
// belongs to.
func interlaceRows(height int) []int {
	rows := make([]int, 0, height)
	for _, pass := range interlacePasses {
		for y := pass.start; y < height; y += pass.step {
			rows = append(rows, y)
		}
	}
	return rows
}

// Deinterlace copies an interlaced index plane from src into dst in
// top-to-bottom row order. Both must hold width*height indices.
func Deinterlace(dst, src []byte, width, height int) {
	for i, y := range interlaceRows(height) {
		copy(dst[y*width:(y+1)*width], src[i*width:(i+1)*width])
	}
}
