package responses

// Pagination mirrors the list-endpoint envelope fields.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Tokens     interface{} `json:"tokens,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// NewSuccessResponse creates a successful API response
func NewSuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response
func NewErrorResponse(error string, details interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Error:   error,
		Details: details,
	}
}

// NewListResponse creates a successful response carrying a count, matching
// the collection endpoints.
func NewListResponse(data interface{}, count int) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Count:   &count,
	}
}

// NewPagedResponse creates a successful response with pagination metadata.
func NewPagedResponse(data interface{}, page, limit int, total int64) APIResponse {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return APIResponse{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}
}
