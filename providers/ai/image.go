package ai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const defaultImageMimeType = "image/png"

// ImageRef points at the image of a vision request. Exactly one of Path, URL
// or Data must be set. Data holds base64-encoded bytes described by MimeType.
type ImageRef struct {
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// ImagePath references a local image file.
func ImagePath(path string) *ImageRef {
	return &ImageRef{Path: path}
}

// ImageURL references a remote image by http(s) URL.
func ImageURL(rawURL string) *ImageRef {
	return &ImageRef{URL: rawURL}
}

// ImageData wraps an already base64-encoded image.
func ImageData(mimeType, data string) *ImageRef {
	return &ImageRef{MimeType: mimeType, Data: data}
}

// ParseImageRef builds an ImageRef from a free-form reference: http(s) URLs,
// data URLs and, for anything else, a local path.
func ParseImageRef(ref string) *ImageRef {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return ImageURL(ref)
	case strings.HasPrefix(lower, "data:"):
		header, data, ok := strings.Cut(ref[len("data:"):], ",")
		if !ok {
			return &ImageRef{Data: ref}
		}
		return ImageData(strings.TrimSuffix(header, ";base64"), data)
	default:
		return ImagePath(ref)
	}
}

// UnmarshalJSON accepts either the object form or a bare reference string.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = *ParseImageRef(s)
		return nil
	}
	type plain ImageRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ImageRef(p)
	return nil
}

// String returns the reference as echoed in normalized results. Inline data is
// reduced to a marker so payload logs stay small.
func (r *ImageRef) String() string {
	if r == nil {
		return ""
	}
	switch {
	case r.URL != "":
		return r.URL
	case r.Path != "":
		return r.Path
	case r.Data != "":
		return "base64:" + r.mimeType()
	}
	return ""
}

// IsRemote reports whether the image is referenced by URL.
func (r *ImageRef) IsRemote() bool {
	return r != nil && r.URL != ""
}

// Validate checks the reference shape without touching the filesystem.
func (r *ImageRef) Validate() error {
	if r == nil {
		return nil
	}
	set := 0
	for _, v := range []string{r.Path, r.URL, r.Data} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return NewValidationError("image", "exactly one of path, url or data must be set")
	}
	if r.URL != "" {
		u, err := url.Parse(r.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError("image", fmt.Sprintf("invalid image url %q", r.URL))
		}
	}
	if r.Data != "" {
		if _, err := base64.StdEncoding.DecodeString(r.Data); err != nil {
			return NewValidationError("image", "image data is not valid base64")
		}
	}
	return nil
}

// Inline returns the MIME type and base64 payload of a path or data reference.
// URL references cannot be inlined and return a validation error.
func (r *ImageRef) Inline() (mimeType string, data string, err error) {
	if r == nil {
		return "", "", NewValidationError("image", "no image")
	}
	if r.Data != "" {
		return r.mimeType(), r.Data, nil
	}
	if r.Path == "" {
		return "", "", NewValidationError("image", "image url cannot be inlined")
	}

	raw, err := os.ReadFile(r.Path)
	if err != nil {
		return "", "", &ValidationError{Field: "image", Message: "cannot read image file", Cause: err}
	}
	if len(raw) == 0 {
		return "", "", NewValidationError("image", fmt.Sprintf("image file %s is empty", r.Path))
	}

	mimeType = r.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(r.Path)))
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	return mimeType, base64.StdEncoding.EncodeToString(raw), nil
}

// DataURL returns the reference as a "data:" URL, or the plain URL for remote images.
func (r *ImageRef) DataURL() (string, error) {
	if r.IsRemote() {
		return r.URL, nil
	}
	mimeType, data, err := r.Inline()
	if err != nil {
		return "", err
	}
	return "data:" + mimeType + ";base64," + data, nil
}

func (r *ImageRef) mimeType() string {
	if r.MimeType == "" {
		return defaultImageMimeType
	}
	return r.MimeType
}
