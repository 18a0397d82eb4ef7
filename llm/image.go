// ABOUTME: Data-URL decoding for attached reference images.
// ABOUTME: Converts browser-supplied data: URLs into ImageData content parts.

package llm

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseDataURL decodes a "data:<media type>;base64,<payload>" URL into
// ImageData suitable for an image content part.
func ParseDataURL(s string) (*ImageData, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL: no payload")
	}

	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("unsupported data URL encoding (expected base64)")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URL payload: %w", err)
	}

	if mediaType == "" {
		mediaType = "image/png"
	}
	return &ImageData{Data: data, MediaType: mediaType}, nil
}
