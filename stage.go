package venmoauth

// Stage is a state of the callback state machine.
type Stage int

const (
	StageAwaitingCode Stage = iota
	StageValidatingState
	StageExchangingToken
	StageFetchingProfile
	StageBuildingIdentity
	StageSignedIn
	StageFailed
)

var stageNames = [...]string{
	StageAwaitingCode:     "awaiting_code",
	StageValidatingState:  "validating_state",
	StageExchangingToken:  "exchanging_token",
	StageFetchingProfile:  "fetching_profile",
	StageBuildingIdentity: "building_identity",
	StageSignedIn:         "signed_in",
	StageFailed:           "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
