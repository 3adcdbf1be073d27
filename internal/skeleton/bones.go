package skeleton

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"bodytrack/internal/joint"
)

// BuildModelTransforms chains per-joint local transforms into model-space
// transforms: model[j] = model[parent(j)] × local[j].
// Parents precede children in joint order, so one pass suffices.
func BuildModelTransforms(locals *[joint.Count]mgl64.Mat4) [joint.Count]mgl64.Mat4 {
	var models [joint.Count]mgl64.Mat4
	for _, id := range joint.All() {
		p := id.Parent()
		if p == joint.None {
			models[id] = locals[id]
			continue
		}
		models[id] = models[p].Mul4(locals[id])
	}
	return models
}

// RestOffset returns the bind-pose offset of id from its parent, in metres.
// The figure stands on the origin, faces +Z and has its left side on +X.
func RestOffset(id joint.ID) mgl64.Vec3 {
	side := 1.0
	if strings.HasPrefix(id.String(), "right_") {
		side = -1
	}
	switch id {
	case joint.Root:
		return mgl64.Vec3{}
	case joint.Hips:
		return mgl64.Vec3{0, 0.95, 0}
	case joint.LeftUpLeg, joint.RightUpLeg:
		return mgl64.Vec3{side * 0.1, -0.05, 0}
	case joint.LeftLeg, joint.RightLeg:
		return mgl64.Vec3{0, -0.45, 0}
	case joint.LeftFoot, joint.RightFoot:
		return mgl64.Vec3{0, -0.42, 0}
	case joint.LeftToes, joint.RightToes:
		return mgl64.Vec3{0, -0.05, 0.12}
	case joint.LeftToesEnd, joint.RightToesEnd:
		return mgl64.Vec3{0, 0, 0.06}
	case joint.Spine1:
		return mgl64.Vec3{0, 0.1, 0}
	case joint.Spine2, joint.Spine3, joint.Spine4, joint.Spine5, joint.Spine6, joint.Spine7:
		return mgl64.Vec3{0, 0.07, 0}
	case joint.LeftShoulder1, joint.RightShoulder1:
		return mgl64.Vec3{side * 0.08, 0, 0}
	case joint.LeftArm, joint.RightArm:
		return mgl64.Vec3{side * 0.1, -0.02, 0}
	case joint.LeftForearm, joint.RightForearm:
		return mgl64.Vec3{side * 0.28, 0, 0}
	case joint.LeftHand, joint.RightHand:
		return mgl64.Vec3{side * 0.25, 0, 0}
	case joint.Neck1:
		return mgl64.Vec3{0, 0.06, 0}
	case joint.Neck2, joint.Neck3, joint.Neck4:
		return mgl64.Vec3{0, 0.03, 0}
	case joint.Head:
		return mgl64.Vec3{0, 0.05, 0}
	case joint.Jaw:
		return mgl64.Vec3{0, -0.02, 0.03}
	case joint.Chin:
		return mgl64.Vec3{0, -0.03, 0.05}
	case joint.LeftEye, joint.RightEye:
		return mgl64.Vec3{side * 0.03, 0.06, 0.08}
	case joint.LeftEyeLowerLid, joint.RightEyeLowerLid:
		return mgl64.Vec3{0, -0.01, 0.01}
	case joint.LeftEyeUpperLid, joint.RightEyeUpperLid:
		return mgl64.Vec3{0, 0.01, 0.01}
	case joint.LeftEyeball, joint.RightEyeball:
		return mgl64.Vec3{0, 0, 0.005}
	case joint.Nose:
		return mgl64.Vec3{0, 0.03, 0.1}
	}
	return fingerOffset(id, side)
}

// fingerOffset covers the hand digits by name.
func fingerOffset(id joint.ID, side float64) mgl64.Vec3 {
	name := id.String()
	if strings.Contains(name, "Thumb") {
		if strings.Contains(name, "Start") {
			return mgl64.Vec3{side * 0.02, 0, 0.04}
		}
		return mgl64.Vec3{side * 0.025, 0, 0.01}
	}
	if !strings.Contains(name, "Start") {
		return mgl64.Vec3{side * 0.03, 0, 0}
	}
	var z float64
	switch {
	case strings.Contains(name, "Index"):
		z = 0.03
	case strings.Contains(name, "Mid"):
		z = 0.01
	case strings.Contains(name, "Ring"):
		z = -0.01
	case strings.Contains(name, "Pinky"):
		z = -0.03
	}
	return mgl64.Vec3{side * 0.03, 0, z}
}
