// Package attach handles claim document storage on S3: object key layout,
// presigned upload URLs, and the headers clients must send on PUT.
package attach

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BuildKey constructs the S3 key for an attachment. The extension comes
// from the validated original filename, so downstream viewers keep the
// right type.
func BuildKey(employeeID, attachmentID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("claims/%s/%s%s", employeeID, attachmentID, ext)
}

// ParseKey extracts employeeID and attachmentID from an S3 key produced by
// BuildKey.
func ParseKey(key string) (employeeID, attachmentID string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "claims" {
		return "", "", false
	}
	name := parts[2]
	ext := filepath.Ext(name)
	if ext == "" {
		return "", "", false
	}
	return parts[1], strings.TrimSuffix(name, ext), true
}

// UploadHeaders builds the headers the client must send on the presigned PUT.
func UploadHeaders(employeeID, attachmentID, contentType string, kind string) map[string]string {
	return map[string]string{
		"Content-Type":               contentType,
		"x-amz-meta-attachment_id":   attachmentID,
		"x-amz-meta-employee_id":     employeeID,
		"x-amz-meta-attachment_kind": kind,
	}
}
