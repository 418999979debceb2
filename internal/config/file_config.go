package config

// FileConfigMaterials - правила приема файлов от преподавателей
type FileConfigMaterials struct {
	MaxSize      int64
	AllowedTypes []string
	// расширение -> MIME, используется когда клиент не прислал Content-Type
	ExtensionTypes map[string]string
}

var MaterialFileConfig = FileConfigMaterials{
	MaxSize: 50 * 1024 * 1024, // 50MB
	AllowedTypes: []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"image/jpeg",
		"image/png",
	},
	ExtensionTypes: map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".ppt":  "application/vnd.ms-powerpoint",
		".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
	},
}
