package model

// JobType is the employment arrangement of a role.
type JobType string

const (
	JobTypeFullTime       JobType = "FULL_TIME"
	JobTypeContractToHire JobType = "CONTRACT_TO_HIRE"
	JobTypeContract       JobType = "CONTRACT"
	JobTypeNotListed      JobType = "NOT_LISTED"
)

// JobTypes lists every valid JobType in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypeContractToHire, JobTypeContract, JobTypeNotListed}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypeContractToHire, JobTypeContract, JobTypeNotListed:
		return true
	}
	return false
}

// DisplayName returns the human-readable label for t.
func (t JobType) DisplayName() string {
	switch t {
	case JobTypeFullTime:
		return "Full Time"
	case JobTypeContractToHire:
		return "Contract to Hire"
	case JobTypeContract:
		return "Contract"
	case JobTypeNotListed:
		return "Not Listed"
	}
	return string(t)
}

// ExperienceLevel is the seniority a role asks for.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "ENTRY_LEVEL"
	ExperienceMid       ExperienceLevel = "MID_LEVEL"
	ExperienceSenior    ExperienceLevel = "SR_LEVEL"
	ExperienceNotListed ExperienceLevel = "NOT_LISTED"
)

// ExperienceLevels lists every valid ExperienceLevel in display order.
var ExperienceLevels = []ExperienceLevel{ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceNotListed}

// Valid reports whether l is one of the known experience levels.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceNotListed:
		return true
	}
	return false
}

// DisplayName returns the human-readable label for l.
func (l ExperienceLevel) DisplayName() string {
	switch l {
	case ExperienceEntry:
		return "Entry Level"
	case ExperienceMid:
		return "Mid Level"
	case ExperienceSenior:
		return "Senior Level"
	case ExperienceNotListed:
		return "Not Listed"
	}
	return string(l)
}
