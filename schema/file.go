package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider loads the declared schema from a YAML file:
//
//	tables:
//	  - name: users
//	    columns:
//	      - name: id
//	        type: BIGSERIAL
//	        primary_key: true
//	      - name: email
//	        type: TEXT
type FileProvider struct {
	path string
}

// NewFileProvider returns a FileProvider reading from path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// schemaFile is the raw YAML document shape of a declared-schema file.
type schemaFile struct {
	Tables []Table `yaml:"tables"`
}

// DeclaredSchema parses the schema file into a Snapshot.
func (p *FileProvider) DeclaredSchema() (Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaFile, err)
	}

	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrSchemaFile, p.path, err)
	}

	snap := make(Snapshot, len(doc.Tables))

	for _, t := range doc.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: table with no name in %s", ErrSchemaFile, p.path)
		}

		if _, dup := snap[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %s in %s", ErrSchemaFile, t.Name, p.path)
		}

		snap[t.Name] = t
	}

	return snap, nil
}
