package domain

// Stage is a step of the deployment sequence
type Stage string

const (
	StageStart                Stage = "Start"
	StageResolving            Stage = "Resolving"
	StageSubmitting           Stage = "Submitting"
	StageAwaitingConfirmation Stage = "AwaitingConfirmation"
	StageSucceeded            Stage = "Succeeded"
	StageFailed               Stage = "Failed"
)

// Terminal reports whether no further stage follows
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}
