package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// FileCategory groups vault files by what they hold.
type FileCategory string

const (
	FileCategoryRecord        FileCategory = "record"
	FileCategoryInsuranceCard FileCategory = "insurance_card"
)

// ValidFileCategories lists the accepted upload categories.
var ValidFileCategories = map[FileCategory]bool{
	FileCategoryRecord:        true,
	FileCategoryInsuranceCard: true,
}

// ScanSource records how a card scan received its text.
type ScanSource string

const (
	ScanSourceText  ScanSource = "text"
	ScanSourceImage ScanSource = "image"
)

// ScanStatus tracks card extraction progress.
type ScanStatus string

const (
	ScanStatusQueued     ScanStatus = "queued"
	ScanStatusProcessing ScanStatus = "processing"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusFailed     ScanStatus = "failed"
)

// ReviewStatus tracks the user's decision on an extracted card.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusConfirmed ReviewStatus = "confirmed"
	ReviewStatusDiscarded ReviewStatus = "discarded"
)

// ShareScope names a category of records a share exposes.
type ShareScope string

const (
	ShareScopeInsuranceCards ShareScope = "insurance_cards"
	ShareScopeRecordFiles    ShareScope = "record_files"
)

// ValidShareScopes lists the scopes a share may carry.
var ValidShareScopes = map[ShareScope]bool{
	ShareScopeInsuranceCards: true,
	ShareScopeRecordFiles:    true,
}

// ParseMode selects how configured card parsers are combined.
type ParseMode string

const (
	ParseModeSingle   ParseMode = "single"
	ParseModeFallback ParseMode = "fallback"
	ParseModeMerge    ParseMode = "merge"
)
