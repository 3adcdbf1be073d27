// Package joint enumerates the skeletal joints reported by the body-tracking
// sensor.
package joint

// ID names one trackable skeletal joint. The set is closed.
type ID uint8

// None is returned by Parent for the root joint.
const None ID = 0xff

const (
	Root ID = iota
	Hips
	LeftUpLeg
	LeftLeg
	LeftFoot
	LeftToes
	LeftToesEnd
	RightUpLeg
	RightLeg
	RightFoot
	RightToes
	RightToesEnd
	Spine1
	Spine2
	Spine3
	Spine4
	Spine5
	Spine6
	Spine7
	LeftShoulder1
	LeftArm
	LeftForearm
	LeftHand
	LeftHandIndexStart
	LeftHandIndex1
	LeftHandIndex2
	LeftHandIndex3
	LeftHandIndexEnd
	LeftHandMidStart
	LeftHandMid1
	LeftHandMid2
	LeftHandMid3
	LeftHandMidEnd
	LeftHandPinkyStart
	LeftHandPinky1
	LeftHandPinky2
	LeftHandPinky3
	LeftHandPinkyEnd
	LeftHandRingStart
	LeftHandRing1
	LeftHandRing2
	LeftHandRing3
	LeftHandRingEnd
	LeftHandThumbStart
	LeftHandThumb1
	LeftHandThumb2
	LeftHandThumbEnd
	Neck1
	Neck2
	Neck3
	Neck4
	Head
	Jaw
	Chin
	LeftEye
	LeftEyeLowerLid
	LeftEyeUpperLid
	LeftEyeball
	Nose
	RightEye
	RightEyeLowerLid
	RightEyeUpperLid
	RightEyeball
	RightShoulder1
	RightArm
	RightForearm
	RightHand
	RightHandIndexStart
	RightHandIndex1
	RightHandIndex2
	RightHandIndex3
	RightHandIndexEnd
	RightHandMidStart
	RightHandMid1
	RightHandMid2
	RightHandMid3
	RightHandMidEnd
	RightHandPinkyStart
	RightHandPinky1
	RightHandPinky2
	RightHandPinky3
	RightHandPinkyEnd
	RightHandRingStart
	RightHandRing1
	RightHandRing2
	RightHandRing3
	RightHandRingEnd
	RightHandThumbStart
	RightHandThumb1
	RightHandThumb2
	RightHandThumbEnd

	// Count is the number of joints.
	Count = iota
)

// sensorNames maps each ID to the joint name used by the tracking sensor.
// Entries are in declaration order.
var sensorNames = [...]string{
	"root",
	"hips_joint",
	"left_upLeg_joint",
	"left_leg_joint",
	"left_foot_joint",
	"left_toes_joint",
	"left_toesEnd_joint",
	"right_upLeg_joint",
	"right_leg_joint",
	"right_foot_joint",
	"right_toes_joint",
	"right_toesEnd_joint",
	"spine_1_joint",
	"spine_2_joint",
	"spine_3_joint",
	"spine_4_joint",
	"spine_5_joint",
	"spine_6_joint",
	"spine_7_joint",
	"left_shoulder_1_joint",
	"left_arm_joint",
	"left_forearm_joint",
	"left_hand_joint",
	"left_handIndexStart_joint",
	"left_handIndex_1_joint",
	"left_handIndex_2_joint",
	"left_handIndex_3_joint",
	"left_handIndexEnd_joint",
	"left_handMidStart_joint",
	"left_handMid_1_joint",
	"left_handMid_2_joint",
	"left_handMid_3_joint",
	"left_handMidEnd_joint",
	"left_handPinkyStart_joint",
	"left_handPinky_1_joint",
	"left_handPinky_2_joint",
	"left_handPinky_3_joint",
	"left_handPinkyEnd_joint",
	"left_handRingStart_joint",
	"left_handRing_1_joint",
	"left_handRing_2_joint",
	"left_handRing_3_joint",
	"left_handRingEnd_joint",
	"left_handThumbStart_joint",
	"left_handThumb_1_joint",
	"left_handThumb_2_joint",
	"left_handThumbEnd_joint",
	"neck_1_joint",
	"neck_2_joint",
	"neck_3_joint",
	"neck_4_joint",
	"head_joint",
	"jaw_joint",
	"chin_joint",
	"left_eye_joint",
	"left_eyeLowerLid_joint",
	"left_eyeUpperLid_joint",
	"left_eyeball_joint",
	"nose_joint",
	"right_eye_joint",
	"right_eyeLowerLid_joint",
	"right_eyeUpperLid_joint",
	"right_eyeball_joint",
	"right_shoulder_1_joint",
	"right_arm_joint",
	"right_forearm_joint",
	"right_hand_joint",
	"right_handIndexStart_joint",
	"right_handIndex_1_joint",
	"right_handIndex_2_joint",
	"right_handIndex_3_joint",
	"right_handIndexEnd_joint",
	"right_handMidStart_joint",
	"right_handMid_1_joint",
	"right_handMid_2_joint",
	"right_handMid_3_joint",
	"right_handMidEnd_joint",
	"right_handPinkyStart_joint",
	"right_handPinky_1_joint",
	"right_handPinky_2_joint",
	"right_handPinky_3_joint",
	"right_handPinkyEnd_joint",
	"right_handRingStart_joint",
	"right_handRing_1_joint",
	"right_handRing_2_joint",
	"right_handRing_3_joint",
	"right_handRingEnd_joint",
	"right_handThumbStart_joint",
	"right_handThumb_1_joint",
	"right_handThumb_2_joint",
	"right_handThumbEnd_joint",
}

// The name table must cover every ID; a mismatch fails to compile.
var _ = [1]struct{}{}[len(sensorNames)-Count]

var byName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for i, n := range sensorNames {
		m[n] = ID(i)
	}
	return m
}()

// String returns the sensor joint name.
func (id ID) String() string {
	if !id.Valid() {
		return "invalid"
	}
	return sensorNames[id]
}

// Valid reports whether id belongs to the enumeration.
func (id ID) Valid() bool { return int(id) < Count }

// Parse maps a sensor joint name to its ID.
func Parse(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns every joint in declaration order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

var mainJoints = [...]ID{
	LeftFoot,
	RightFoot,
	LeftHand,
	RightHand,
	Head,
	LeftArm,
	RightArm,
	LeftLeg,
	RightLeg,
	Neck1,
	LeftForearm,
	RightForearm,
	LeftUpLeg,
	RightUpLeg,
	Spine5,
	Spine1,
	Root,
}

// Main returns the joints that carry a visual marker, in a fixed order.
func Main() []ID {
	ids := make([]ID, len(mainJoints))
	copy(ids, mainJoints[:])
	return ids
}
