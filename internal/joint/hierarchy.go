package joint

// parents holds the skeletal parent of each joint, in declaration order.
var parents = [...]ID{
	None,          // root
	Root,          // hips
	Hips,          // left_upLeg
	LeftUpLeg,     // left_leg
	LeftLeg,       // left_foot
	LeftFoot,      // left_toes
	LeftToes,      // left_toesEnd
	Hips,          // right_upLeg
	RightUpLeg,    // right_leg
	RightLeg,      // right_foot
	RightFoot,     // right_toes
	RightToes,     // right_toesEnd
	Hips,          // spine_1
	Spine1,        // spine_2
	Spine2,        // spine_3
	Spine3,        // spine_4
	Spine4,        // spine_5
	Spine5,        // spine_6
	Spine6,        // spine_7
	Spine7,        // left_shoulder_1
	LeftShoulder1, // left_arm
	LeftArm,       // left_forearm
	LeftForearm,   // left_hand

	LeftHand, LeftHandIndexStart, LeftHandIndex1, LeftHandIndex2, LeftHandIndex3,
	LeftHand, LeftHandMidStart, LeftHandMid1, LeftHandMid2, LeftHandMid3,
	LeftHand, LeftHandPinkyStart, LeftHandPinky1, LeftHandPinky2, LeftHandPinky3,
	LeftHand, LeftHandRingStart, LeftHandRing1, LeftHandRing2, LeftHandRing3,
	LeftHand, LeftHandThumbStart, LeftHandThumb1, LeftHandThumb2,

	Spine7, // neck_1
	Neck1,  // neck_2
	Neck2,  // neck_3
	Neck3,  // neck_4
	Neck4,  // head
	Head,   // jaw
	Jaw,    // chin

	// left eye and lids, nose, right eye and lids
	Head, LeftEye, LeftEye, LeftEye,
	Head,
	Head, RightEye, RightEye, RightEye,

	Spine7,         // right_shoulder_1
	RightShoulder1, // right_arm
	RightArm,       // right_forearm
	RightForearm,   // right_hand

	RightHand, RightHandIndexStart, RightHandIndex1, RightHandIndex2, RightHandIndex3,
	RightHand, RightHandMidStart, RightHandMid1, RightHandMid2, RightHandMid3,
	RightHand, RightHandPinkyStart, RightHandPinky1, RightHandPinky2, RightHandPinky3,
	RightHand, RightHandRingStart, RightHandRing1, RightHandRing2, RightHandRing3,
	RightHand, RightHandThumbStart, RightHandThumb1, RightHandThumb2,
}

var _ = [1]struct{}{}[len(parents)-Count]

// Parent returns the skeletal parent of id, or None for the root.
// A parent always precedes its children in declaration order.
func (id ID) Parent() ID {
	if !id.Valid() {
		return None
	}
	return parents[id]
}
