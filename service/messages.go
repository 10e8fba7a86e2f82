package service

import (
	"github.com/domino14/handmatch/analyzer"
)

// AnalyzeRequest is the JSON body of a request on the analyze subject.
type AnalyzeRequest struct {
	RequestID string   `json:"requestId,omitempty"`
	Hand      []string `json:"hand"`
	// Top limits the number of summaries returned. 0 means the configured
	// default.
	Top int `json:"top,omitempty"`
}

// AnalyzeResponse is the JSON reply. Error is set instead of Results when
// the request could not be served.
type AnalyzeResponse struct {
	RequestID string                          `json:"requestId"`
	Results   []analyzer.TemplateMatchSummary `json:"results"`
	Cached    bool                            `json:"cached,omitempty"`
	Error     string                          `json:"error,omitempty"`
}

// LambdaEvent is the payload of a lambda invocation. If ReplyChannel is set
// the response is also published there.
type LambdaEvent struct {
	AnalyzeRequest
	ReplyChannel string `json:"replyChannel,omitempty"`
}
