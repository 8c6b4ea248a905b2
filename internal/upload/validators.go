// validators.go — Input validators/sanitizers for the OS-automation upload fallback.
package upload

import (
	"fmt"
	"strings"
)

// ValidatePathForOSAutomation rejects file paths containing shell metacharacters
// that could be used for command injection in OS automation scripts.
func ValidatePathForOSAutomation(filePath string) error {
	// Reject null bytes (path traversal via null byte injection)
	if strings.ContainsRune(filePath, 0) {
		return fmt.Errorf("file path contains null byte")
	}
	// Reject newlines (can break AppleScript/PowerShell script structure)
	if strings.ContainsAny(filePath, "\n\r") {
		return fmt.Errorf("file path contains newline characters")
	}
	// Reject backticks (shell command substitution in PowerShell)
	if strings.Contains(filePath, "`") {
		return fmt.Errorf("file path contains backtick characters")
	}
	return nil
}

// ============================================
// Input Sanitizers
// ============================================

// SanitizeForAppleScript escapes a string for safe embedding in AppleScript.
// Replaces backslashes and double quotes to prevent command injection.
func SanitizeForAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// SanitizeForSendKeys escapes a string for safe use with SendKeys.
// SendKeys treats +, ^, %, ~, (, ), {, } as special characters.
func SanitizeForSendKeys(s string) string {
	replacer := strings.NewReplacer(
		"+", "{+}",
		"^", "{^}",
		"%", "{%}",
		"~", "{~}",
		"(", "{(}",
		")", "{)}",
		"{", "{{}",
		"}", "{}}",
	)
	return replacer.Replace(s)
}
