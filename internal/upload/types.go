// types.go — Request/response types for the upload_file OS-automation fallback.
//
// The primary upload_file path (internal/action) hands the resolved file
// path directly to capability.BrowserDriver.UploadFile; these types back only
// the fallback used when the driver reports it cannot set a file input
// programmatically (sandboxed `<input type=file>`, no DOM access) and the
// daemon must drive the browser's native file-picker dialog at the OS level
// instead.
package upload

// OSAutomationInjectRequest is the input to HandleOSAutomation: drive OS-level
// keystrokes to fill a file dialog when the driver can't set the file input directly.
type OSAutomationInjectRequest struct {
	FilePath   string
	BrowserPID int
}

// StageResponse is the result shape for the OS-automation fallback.
type StageResponse struct {
	Success       bool
	Stage         int
	Error         string
	Status        string
	FileName      string
	FileSizeBytes int64
	DurationMs    int64
	Suggestions   []string
}
