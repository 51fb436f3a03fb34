package models

// ShiftLog is the shift handover form. It is also the shape of the
// shiftHandoverLogData draft.
type ShiftLog struct {
	ShiftDetails    string `json:"shiftDetails" validate:"required,max=5000"`
	SafetyIssues    string `json:"safetyIssues" validate:"max=5000"`
	NextShiftTasks  string `json:"nextShiftTasks" validate:"max=5000"`
	AdditionalNotes string `json:"additionalNotes" validate:"max=10000"`
}

// SafetyPlanRow is one risk line of a safety management plan. A plan
// (and the smpDraft draft) is a []SafetyPlanRow.
type SafetyPlanRow struct {
	RiskAssessment  string `json:"riskAssessment" validate:"required"`
	ControlMeasures string `json:"controlMeasures" validate:"required"`
	RiskLevel       string `json:"riskLevel" validate:"required"`
	Priority        string `json:"priority" validate:"required"`
	Progress        int    `json:"progress" validate:"gte=0,lte=100"`
}

// SafetyPlan wraps the rows so the validator can dive into them.
type SafetyPlan struct {
	Rows []SafetyPlanRow `json:"rows" validate:"required,min=1,dive"`
}

// Attachment is an optional file sent along with a form.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
