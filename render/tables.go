package render

// Corners of a cell are indexed by bit = i<<2 | j<<1 | k where i, j, k
// are the x, y, z offsets of the corner, each 0 or 1.

func cornerIJK(bit uint8) (i, j, k int) {
	return int(bit>>2) & 1, int(bit>>1) & 1, int(bit) & 1
}

// cubeEdges lists the 12 cell edges as corner bit pairs.
var cubeEdges = [12][2]uint8{
	{0, 4}, {4, 6}, {6, 2}, {2, 0}, // k=0 ring
	{1, 5}, {5, 7}, {7, 3}, {3, 1}, // k=1 ring
	{0, 1}, {4, 5}, {6, 7}, {2, 3}, // along z
}

// edgeBetween maps a pair of adjacent corners to their cube edge index.
var edgeBetween [8][8]int8

func init() {
	for a := range edgeBetween {
		for b := range edgeBetween[a] {
			edgeBetween[a][b] = -1
		}
	}
	for e, c := range cubeEdges {
		edgeBetween[c[0]][c[1]] = int8(e)
		edgeBetween[c[1]][c[0]] = int8(e)
	}
}

// Face indices.
const (
	FaceNegX = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
	numFaces
)

// cubeFaces holds the corners of each face in cyclic order, so that
// consecutive corners share a cube edge.
var cubeFaces = [numFaces][4]uint8{
	FaceNegX: {0, 1, 3, 2},
	FacePosX: {4, 6, 7, 5},
	FaceNegY: {0, 4, 5, 1},
	FacePosY: {2, 3, 7, 6},
	FaceNegZ: {0, 2, 6, 4},
	FacePosZ: {1, 5, 7, 3},
}

// tetrahedra splits an even parity cell into a central tetrahedron and
// four corner tetrahedra. Odd parity cells mirror the split along y by
// flipping the j bit so face diagonals agree between neighbouring cells.
var tetrahedra = [5][4]uint8{
	{0, 3, 5, 6},
	{0, 1, 5, 3},
	{6, 3, 5, 7},
	{0, 3, 2, 6},
	{0, 4, 5, 6},
}

const oddParityMask = 0b010

// mcTable maps a hot corner configuration (bit c set when corner c is
// hot) to triangles given as triples of cube edge indices.
var mcTable [256][]int8

// marchingCubesMaxTriangles is the largest triangle count in mcTable.
var marchingCubesMaxTriangles int

func init() {
	for config := range mcTable {
		mcTable[config] = mcTriangulate(uint8(config))
		marchingCubesMaxTriangles = max(marchingCubesMaxTriangles, len(mcTable[config])/3)
	}
}

// mcTriangulate builds the face consistent triangulation of one
// configuration. Every face with a sign change contributes a directed
// segment around each run of hot corners, walking the face counter
// clockwise seen from outside the cell from the crossing that leaves the
// run to the crossing that enters it. Ambiguous faces (hot corners
// diagonal) thus cut off each hot corner separately. Both cells sharing
// a face see the same corners and so produce the same segments, walked
// in opposite directions. Each crossing edge has one outgoing and one
// incoming segment so the segments close into loops, which are fanned
// into triangles whose normal (b-a)x(c-a) faces the hot corners.
func mcTriangulate(config uint8) []int8 {
	hot := func(c uint8) bool { return config>>c&1 != 0 }
	var next [12]int8
	for e := range next {
		next[e] = -1
	}
	for _, c := range cubeFaces {
		for s := 0; s < 4; s++ {
			prev, cur := c[(s+3)%4], c[s]
			if !hot(cur) || hot(prev) {
				continue
			}
			// cur starts a hot run; find its last corner.
			last := s
			for hot(c[(last+1)%4]) {
				last = (last + 1) % 4
			}
			exit := edgeBetween[c[last]][c[(last+1)%4]]
			next[exit] = edgeBetween[prev][cur]
		}
	}

	var (
		tris    []int8
		visited [12]bool
	)
	for start := int8(0); start < 12; start++ {
		if next[start] < 0 || visited[start] {
			continue
		}
		loop := []int8{start}
		visited[start] = true
		for cur := next[start]; cur != start; cur = next[cur] {
			visited[cur] = true
			loop = append(loop, cur)
		}
		for i := 1; i+1 < len(loop); i++ {
			tris = append(tris, loop[0], loop[i], loop[i+1])
		}
	}
	return tris
}
