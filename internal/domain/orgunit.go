package domain

// Faculty is closed reference data: students register against a faculty and
// one of its departments. Years bounds the valid study-year range.
type Faculty struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Years int    `json:"years"`
}

// Department belongs to exactly one faculty.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FacultyID   int64  `json:"faculty_id"`
}
