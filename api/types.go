package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler  healthHandler
	authHandler    authHandler
	projectHandler projectHandler
}

// Pagination summarizes a page listing for the response envelope.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Success bool     `json:"success" example:"false"`
	Message string   `json:"message" example:"Internal Server Error"`
	Errors  []string `json:"errors,omitempty"`
}
