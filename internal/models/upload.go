package models

// TeacherUpload - учебный материал, загруженный преподавателем
type TeacherUpload struct {
	BaseModel
	Title        string       `gorm:"size:255;not null" json:"title"`
	Year         int          `gorm:"not null;index:idx_material_scope" json:"year"`
	Semester     *int         `gorm:"index:idx_material_scope" json:"semester"`
	SubjectCombo *string      `gorm:"size:50" json:"subject_combo"`
	Subject      string       `gorm:"size:100;not null;index" json:"subject"`
	Type         MaterialType `gorm:"type:varchar(20);not null" json:"type"`
	Description  string       `gorm:"type:text" json:"description"`
	FilePath     string       `gorm:"size:500;not null" json:"file_path"`
	DownloadURL  string       `gorm:"size:1000" json:"download_url"`
	FileSize     int64        `json:"file_size"`
	FileName     string       `gorm:"size:255" json:"file_name"`
	MimeType     string       `gorm:"size:100" json:"mime_type"`
	UploadedBy   string       `gorm:"size:36;not null;index" json:"uploaded_by"`
	Status       UploadStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
}
