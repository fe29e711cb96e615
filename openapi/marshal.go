package openapi

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/segmentio/encoding/json"
	yaml "go.yaml.in/yaml/v4"
)

// outputFileMode matches the permission the teacher's builder uses for
// generated spec files: owner read/write only.
const outputFileMode = 0600

// MarshalYAML returns doc as YAML bytes. Map keys sort alphabetically
// under go.yaml.in/yaml/v4's default encoder, which is what keeps repeated
// runs of the same test suite byte-identical.
func MarshalYAML(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// MarshalJSON returns doc as indented JSON bytes.
func MarshalJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// WriteFile marshals doc and writes it to path, choosing YAML or JSON by
// the file extension (.json for JSON; .yaml/.yml, or anything else, for
// YAML).
func WriteFile(doc *Document, path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = MarshalJSON(doc)
	default:
		data, err = MarshalYAML(doc)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, outputFileMode)
}
