package attachment

// BinaryExtensions are non-text files the backend accepts as attachments
var BinaryExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// TextExtensions defines file extensions that are sent as UTF-8 text
var TextExtensions = map[string]bool{
	// Plain text
	".txt": true,
	".log": true,
	".md":  true,
	".rtf": false, // Rich text requires special parsing

	// Data formats
	".json": true,
	".xml":  true,
	".yaml": true,
	".yml":  true,
	".csv":  true,
	".tsv":  true,

	// Configuration
	".conf": true,
	".cfg":  true,
	".ini":  true,
	".env":  false, // Usually holds secrets

	// Programming languages
	".go":   true,
	".java": true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".c":    true,
	".cpp":  true,
	".h":    true,
	".rs":   true,
	".rb":   true,
	".php":  true,
	".cs":   true,

	// Web
	".html": true,
	".css":  true,

	// Scripting
	".sh":  true,
	".ps1": true,

	// SQL
	".sql": true,
}

// ImageExtensions may be attached as the prompt image for vision models
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// IsText checks if a file extension is sent as text
func IsText(ext string) bool {
	supported, exists := TextExtensions[ext]
	return exists && supported
}

// IsSupported checks if a file extension can be attached at all
func IsSupported(ext string) bool {
	return IsText(ext) || BinaryExtensions[ext]
}

// IsImage checks if a file extension can be attached as an image
func IsImage(ext string) bool {
	return ImageExtensions[ext]
}
