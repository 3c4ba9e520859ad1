package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
}

// UploadContexts - правила для загружаемых файлов по назначению.
// xlsx - это zip-архив, поэтому DetectContentType отдаёт application/zip.
var UploadContexts = map[string]UploadConfig{
	"equipment_import": {
		AllowedMimeTypes: []string{"application/zip", "application/octet-stream"},
		MaxSizeMB:        10,
	},
}
