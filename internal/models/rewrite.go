package models

// RewriteRequest is the pair of texts sent to the completion service.
type RewriteRequest struct {
	SourceCode string `json:"source_code"`
	Guidelines string `json:"guidelines"`
	Template   string `json:"template,omitempty"` // catalog name the guidelines came from, if any
}

// SplitResult is a raw completion separated into code and explanation.
type SplitResult struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}
