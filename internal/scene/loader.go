package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type vocabularyFile struct {
	Language string            `yaml:"language"`
	Danger   []string          `yaml:"danger"`
	Labels   map[string]string `yaml:"labels"`
	Template templateFile      `yaml:"template"`
}

type templateFile struct {
	Primary   string            `yaml:"primary"`
	Secondary string            `yaml:"secondary"`
	Fallback  string            `yaml:"fallback"`
	Positions map[string]string `yaml:"positions"`
	Distances map[string]string `yaml:"distances"`
	Dangerous string            `yaml:"dangerous"`
	Safe      string            `yaml:"safe"`
}

// LoadVocabularyFile reads a YAML vocabulary from path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: open %q: %w", path, err)
	}
	defer f.Close()

	v, err := LoadVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: parse %q: %w", path, err)
	}
	return v, nil
}

// LoadVocabulary decodes a YAML vocabulary. Unknown keys are rejected. When the
// danger list is omitted the default hazard classes apply.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var file vocabularyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	tpl := Template{
		Primary:   file.Template.Primary,
		Secondary: file.Template.Secondary,
		Fallback:  file.Template.Fallback,
		Positions: make(map[Position]string, len(file.Template.Positions)),
		Distances: make(map[Distance]string, len(file.Template.Distances)),
		Dangerous: file.Template.Dangerous,
		Safe:      file.Template.Safe,
	}

	var errs []error
	for key, wording := range file.Template.Positions {
		p, err := ParsePosition(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tpl.Positions[p] = wording
	}
	for key, wording := range file.Template.Distances {
		d, err := ParseDistance(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tpl.Distances[d] = wording
	}
	if file.Language == "" {
		errs = append(errs, errors.New("language is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	danger := file.Danger
	if danger == nil {
		danger = DefaultDangerLabels
	}
	return NewVocabulary(file.Language, danger, file.Labels, tpl)
}
