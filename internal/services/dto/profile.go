package dto

// UpdateProfileRequest - только академические поля, подписку менять нельзя
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,max=255"`
	Year         *int    `json:"year" validate:"omitempty,min=1,max=4"`
	Semester     *int    `json:"semester" validate:"omitempty,min=1,max=8"`
	CollegeID    *string `json:"college_id" validate:"omitempty,max=100"`
	SubjectCombo *string `json:"subject_combo" validate:"omitempty,max=50"`
}

type RedirectResponse struct {
	Path string `json:"path"`
}
