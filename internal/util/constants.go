package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeZip         = "application/zip"
	MimeText        = "text/plain"
	MimeOctetStream = "application/octet-stream"
)

// MaxSubmissionSize caps assignment and project uploads.
const MaxSubmissionSize = 20 << 20

var (
	AllowedSubmissionTypes = []string{MimePDF, MimeZip, MimeText, MimeImage}
)
