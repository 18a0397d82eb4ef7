// ABOUTME: Exports a conversation's document as a structured YAML bundle.
// ABOUTME: Uses gopkg.in/yaml.v3 for serialization with a stable field order.

package editor

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/pagesmith/page"
)

// YamlPage is the serializable YAML representation of an exported page.
type YamlPage struct {
	Conversation string `yaml:"conversation"`
	ExportedAt   string `yaml:"exported_at"`
	HTML         string `yaml:"html"`
	CSS          string `yaml:"css,omitempty"`
	JavaScript   string `yaml:"javascript,omitempty"`
}

// ExportYAML serializes the document as a YAML page bundle.
func ExportYAML(conversationID string, doc page.Document) (string, error) {
	bundle := YamlPage{
		Conversation: conversationID,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		HTML:         doc.HTML,
		CSS:          doc.CSS,
		JavaScript:   doc.JavaScript,
	}

	out, err := yaml.Marshal(&bundle)
	if err != nil {
		return "", fmt.Errorf("marshal page bundle: %w", err)
	}
	return string(out), nil
}
