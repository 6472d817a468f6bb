// Package validation implements per-file structural checks that run before
// any network call: extension, declared MIME type, byte size, and the
// cross-check between extension and MIME type.
package validation

// Policy enumerates the parameters of file validation.
type Policy struct {
	// MaxSizeBytes is the largest accepted payload.
	MaxSizeBytes int64
	// AllowedExtensions holds lowercased, dot-less extensions.
	AllowedExtensions map[string]struct{}
	// AllowedMIMETypes holds the accepted declared MIME types.
	AllowedMIMETypes map[string]struct{}
}

// DefaultMaxSizeBytes is 5 MiB.
const DefaultMaxSizeBytes int64 = 5 * 1024 * 1024

// extensionMIME maps known extensions to their canonical MIME type, used by
// the cross-consistency rule.
var extensionMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DefaultPolicy returns the policy used for listing images: common raster
// image types up to 5 MiB.
func DefaultPolicy() Policy {
	exts := make(map[string]struct{}, len(extensionMIME))
	mimes := make(map[string]struct{}, len(extensionMIME))
	for ext, mime := range extensionMIME {
		exts[ext] = struct{}{}
		mimes[mime] = struct{}{}
	}
	return Policy{
		MaxSizeBytes:      DefaultMaxSizeBytes,
		AllowedExtensions: exts,
		AllowedMIMETypes:  mimes,
	}
}
