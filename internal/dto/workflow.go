package dto

// WorkflowActionRequest carries the optional reviewer comment attached to
// an approve or reject decision.
type WorkflowActionRequest struct {
	Comment string `json:"comment"`
}
