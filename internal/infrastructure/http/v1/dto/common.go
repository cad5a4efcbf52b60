// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ListResponse wraps list results.
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RangeRequest carries an inclusive date range filter. Dates are
// YYYY-MM-DD strings; empty bounds are open.
type RangeRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}
