package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"gopkg.in/yaml.v3"
)

const maxSpecBytes = 1 << 20

// readSpecFile loads a structured spec from path, or from stdin when path
// is empty or "-". JSON payloads go through the extraction schema. YAML is
// written by hand, so it is decoded straight into the spec types, which
// lets unquoted scalars such as "count: 50" land in string fields.
func readSpecFile(path string, stdin io.Reader) (*intake.StructuredSpec, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxSpecBytes))
	} else {
		// #nosec G304 -- the user names the spec file
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return intake.DecodeJSON(trimmed)
	}
	return decodeYAMLSpec(trimmed)
}

func decodeYAMLSpec(data []byte) (*intake.StructuredSpec, error) {
	var spec intake.StructuredSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &intake.InvalidSpecError{Reason: fmt.Sprintf("is not valid YAML: %v", err)}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}
