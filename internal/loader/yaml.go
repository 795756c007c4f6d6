package loader

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/srcid/internal/ir"
)

// yamlBatch is the YAML file layout.
type yamlBatch struct {
	Sources []ir.Announcement `yaml:"sources"`
}

func decodeYAML(name string, data []byte) ([]ir.Announcement, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var batch yamlBatch
	if err := dec.Decode(&batch); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error(), File: name}
	}
	return batch.Sources, nil
}
