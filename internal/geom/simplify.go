package geom

// Simplify reduces points with the Douglas-Peucker algorithm. Points closer
// than tolerance to the chord of their range are dropped. The first and last
// point are always kept and the input slice is never modified.
func Simplify(points []Vec3, tolerance float32) []Vec3 {
	if len(points) < 3 {
		return Clone(points)
	}
	return douglasPeucker(points, tolerance)
}

func douglasPeucker(points []Vec3, tolerance float32) []Vec3 {
	if len(points) < 3 {
		return Clone(points)
	}
	first, last := points[0], points[len(points)-1]

	index, maxDist := 0, float32(0)
	for i := 1; i < len(points)-1; i++ {
		if d := PerpendicularDistance(points[i], first, last); d > maxDist {
			index, maxDist = i, d
		}
	}

	if maxDist > tolerance {
		left := douglasPeucker(points[:index+1], tolerance)
		right := douglasPeucker(points[index:], tolerance)
		return append(left[:len(left)-1], right...)
	}
	return []Vec3{first, last}
}
