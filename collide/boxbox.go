package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// collideBoxes runs a separating-axis test over the 6 face normals and
// 9 edge cross products, then clips the incident face against the
// reference face for face axes, or synthesizes a single point for edge
// axes. Normals separate geom a.
func collideBoxes(ga *actor.Geom, sa *actor.Box, gb *actor.Geom, sb *actor.Box) []Contact {
	ta, tb := ga.Placement(), gb.Placement()
	ha := sa.Size.Mul(0.5)
	hb := sb.Size.Mul(0.5)

	var axesA, axesB [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		axesA[i] = ta.Rotation.Rotate(e)
		axesB[i] = tb.Rotation.Rotate(e)
	}
	d := tb.Position.Sub(ta.Position)

	bestDepth := math.Inf(1)
	var bestAxis mgl64.Vec3
	bestIsEdge := false

	// test returns false on a separating axis, otherwise tracks the
	// axis of least overlap. Edge axes are penalized slightly so face
	// contact wins ties (stabler manifolds).
	test := func(axis mgl64.Vec3, isEdge bool) bool {
		l := axis.Len()
		if l < contactEpsilon {
			return true // degenerate cross product
		}
		axis = axis.Mul(1 / l)
		ra := math.Abs(axesA[0].Dot(axis))*ha[0] +
			math.Abs(axesA[1].Dot(axis))*ha[1] +
			math.Abs(axesA[2].Dot(axis))*ha[2]
		rb := math.Abs(axesB[0].Dot(axis))*hb[0] +
			math.Abs(axesB[1].Dot(axis))*hb[1] +
			math.Abs(axesB[2].Dot(axis))*hb[2]
		dist := math.Abs(d.Dot(axis))
		depth := ra + rb - dist
		if depth < 0 {
			return false
		}
		weighted := depth
		if isEdge {
			weighted *= 1.05
		}
		if weighted < bestDepth {
			bestDepth = weighted
			bestAxis = axis
			if d.Dot(axis) > 0 {
				bestAxis = axis.Mul(-1)
			}
			bestIsEdge = isEdge
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(axesA[i], false) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		if !test(axesB[i], false) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(axesA[i].Cross(axesB[j]), true) {
				return nil
			}
		}
	}

	if bestIsEdge {
		return boxEdgeContact(ta, ha, tb, hb, bestAxis)
	}
	return boxFaceContacts(ga, gb, bestAxis)
}

// boxFaceContacts clips the incident face of b against the reference
// face of a along the separation axis. normal separates a.
func boxFaceContacts(ga, gb *actor.Geom, normal mgl64.Vec3) []Contact {
	ta, tb := ga.Placement(), gb.Placement()

	// Reference face on a faces along -normal, incident face on b
	// along +normal (toward a).
	refLocal := ta.Rotation.Conjugate().Rotate(normal.Mul(-1))
	refFace := ga.Shape().ContactFeature(refLocal)
	incLocal := tb.Rotation.Conjugate().Rotate(normal)
	incFace := gb.Shape().ContactFeature(incLocal)

	// The reference must be a face. When the separating axis belongs to
	// b (a's supporting feature degenerates to an edge or vertex), swap
	// roles so b's face does the clipping.
	if len(refFace) < 3 && len(incFace) >= 3 {
		return flip(boxFaceContacts(gb, ga, normal.Mul(-1)))
	}

	ref := make([]mgl64.Vec3, len(refFace))
	for i, p := range refFace {
		ref[i] = ta.Apply(p)
	}
	inc := make([]mgl64.Vec3, len(incFace))
	for i, p := range incFace {
		inc[i] = tb.Apply(p)
	}

	refPlaneOffset := ref[0].Dot(normal.Mul(-1))
	poly := inc

	if len(ref) >= 3 {
		// Clip against the four side planes of the reference face.
		center := mgl64.Vec3{}
		for _, p := range ref {
			center = center.Add(p)
		}
		center = center.Mul(1 / float64(len(ref)))
		for i := range ref {
			edge := ref[(i+1)%len(ref)].Sub(ref[i])
			side := edge.Cross(normal)
			if ref[i].Sub(center).Dot(side) < 0 {
				side = side.Mul(-1)
			}
			poly = clipPolygon(poly, side, ref[i].Dot(side))
			if len(poly) == 0 {
				return nil
			}
		}
	}

	// Clipping a degenerate incident feature (an edge) emits each
	// crossing twice, so drop near-coincident points.
	var contacts []Contact
	for _, p := range poly {
		sep := p.Dot(normal.Mul(-1)) - refPlaneOffset
		if sep >= 0 {
			continue
		}
		dup := false
		for _, c := range contacts {
			if c.Pos.Sub(p).Len() < 1e-6 {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		contacts = append(contacts, Contact{
			Pos:    p,
			Normal: normal,
			Depth:  -sep,
		})
		if len(contacts) == MaxContacts {
			break
		}
	}
	return contacts
}

// clipPolygon keeps the part of poly on the inner side of the plane
// n·x <= offset (Sutherland-Hodgman, one plane).
func clipPolygon(poly []mgl64.Vec3, n mgl64.Vec3, offset float64) []mgl64.Vec3 {
	if len(poly) == 0 {
		return nil
	}
	var out []mgl64.Vec3
	prev := poly[len(poly)-1]
	prevIn := prev.Dot(n) <= offset
	for _, cur := range poly {
		curIn := cur.Dot(n) <= offset
		if prevIn != curIn {
			dir := cur.Sub(prev)
			denom := dir.Dot(n)
			if math.Abs(denom) > contactEpsilon {
				t := (offset - prev.Dot(n)) / denom
				out = append(out, prev.Add(dir.Mul(t)))
			}
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// boxEdgeContact builds the single contact point for an edge-edge axis:
// the closest points between the two supporting edges.
func boxEdgeContact(ta actor.Transform, ha mgl64.Vec3, tb actor.Transform, hb mgl64.Vec3, normal mgl64.Vec3) []Contact {
	ea := supportingEdge(ta, ha, normal.Mul(-1))
	eb := supportingEdge(tb, hb, normal)
	pa, pb := closestPointsSegments(ea, eb)
	depth := pb.Sub(pa).Dot(normal)
	if depth <= 0 {
		return nil
	}
	return []Contact{{
		Pos:    pa.Add(pb).Mul(0.5),
		Normal: normal,
		Depth:  depth,
	}}
}

// supportingEdge returns the box edge most aligned with dir: the two
// axes of largest |support| are pinned to their sign, the remaining
// axis spans the edge.
func supportingEdge(t actor.Transform, h mgl64.Vec3, dir mgl64.Vec3) segment {
	local := t.Rotation.Conjugate().Rotate(dir)

	// Free axis = smallest |component|.
	free := 0
	for i := 1; i < 3; i++ {
		if math.Abs(local[i]) < math.Abs(local[free]) {
			free = i
		}
	}
	var base mgl64.Vec3
	for i := 0; i < 3; i++ {
		if i == free {
			continue
		}
		if local[i] >= 0 {
			base[i] = h[i]
		} else {
			base[i] = -h[i]
		}
	}
	p0, p1 := base, base
	p0[free] = -h[free]
	p1[free] = h[free]
	return segment{t.Apply(p0), t.Apply(p1)}
}
