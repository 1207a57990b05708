package domain

type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentAudio      ContentType = "audio"
	ContentImage      ContentType = "image"
	ContentDocument   ContentType = "document"
	ContentExternal   ContentType = "external"
	ContentAssessment ContentType = "assessment"
	ContentAssignment ContentType = "assignment"
	ContentScorm      ContentType = "scorm"
)

// ValidContentTypes is the canonical set of accepted content type strings.
var ValidContentTypes = map[ContentType]bool{
	ContentVideo: true, ContentAudio: true, ContentImage: true,
	ContentDocument: true, ContentExternal: true, ContentAssessment: true,
	ContentAssignment: true, ContentScorm: true,
}

type StatusLabel string

const (
	StatusNotStarted StatusLabel = "not_started"
	StatusStarted    StatusLabel = "started"
	StatusInProgress StatusLabel = "in_progress"
	StatusCompleted  StatusLabel = "completed"
	StatusUnknown    StatusLabel = "unknown"
)

// StatusForPercentage maps a normalized percentage onto a status label.
func StatusForPercentage(pct int, completed bool) StatusLabel {
	switch {
	case completed:
		return StatusCompleted
	case pct <= 0:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

type RequirementType string

const (
	RequirementAssessment RequirementType = "assessment"
	RequirementSurvey     RequirementType = "survey"
	RequirementAssignment RequirementType = "assignment"
	RequirementFeedback   RequirementType = "feedback"
	RequirementOther      RequirementType = "other"
)

type RequirementPhase string

const (
	PhasePre  RequirementPhase = "pre"
	PhasePost RequirementPhase = "post"
)

type SubmissionKind string

const (
	SubmissionSurvey     SubmissionKind = "survey"
	SubmissionAssignment SubmissionKind = "assignment"
	SubmissionFeedback   SubmissionKind = "feedback"
)
