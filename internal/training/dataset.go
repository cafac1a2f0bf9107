package training

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mikey/phish-detector/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed sample_dataset.yaml
var sampleDataset []byte

// Sample is one labelled email. Label is core.ClassPhishing or core.ClassLegitimate.
type Sample struct {
	Text  string `json:"email_text" yaml:"email_text"`
	Label int    `json:"label" yaml:"label"`
}

// Dataset is an ordered set of labelled emails
type Dataset []Sample

// Counts returns the number of legitimate and phishing samples
func (d Dataset) Counts() (legitimate, phishing int) {
	for _, s := range d {
		if s.Label == core.ClassPhishing {
			phishing++
		} else {
			legitimate++
		}
	}
	return legitimate, phishing
}

// SampleDataset returns the built-in dataset of 20 phishing and 20
// legitimate emails
func SampleDataset() Dataset {
	d, err := decodeYAML(sampleDataset)
	if err != nil {
		panic(fmt.Sprintf("embedded dataset: %v", err))
	}
	return d
}

// LoadDataset reads a dataset file, picking the format from its extension:
// .csv (email_text,label header), .json or .yaml/.yml. An empty path
// yields the built-in dataset.
func LoadDataset(path string) (Dataset, error) {
	if path == "" {
		return SampleDataset(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var d Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		d, err = decodeCSV(bytes.NewReader(data))
	case ".json":
		err = json.Unmarshal(data, &d)
	case ".yaml", ".yml":
		d, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return d, nil
}

func decodeYAML(data []byte) (Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "email_text", "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, errors.New("header must contain email_text and label columns")
	}

	var d Dataset
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if textCol >= len(record) || labelCol >= len(record) {
			return nil, fmt.Errorf("line %d: missing columns", line)
		}
		label, err := parseLabel(record[labelCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d = append(d, Sample{Text: record[textCol], Label: label})
	}
	return d, nil
}

func parseLabel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phishing", "spam":
		return core.ClassPhishing, nil
	case "legitimate", "ham":
		return core.ClassLegitimate, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid label %q", s)
	}
	return n, nil
}

func (d Dataset) validate() error {
	if len(d) == 0 {
		return errors.New("dataset is empty")
	}
	for i, s := range d {
		if s.Label != core.ClassPhishing && s.Label != core.ClassLegitimate {
			return fmt.Errorf("sample %d: label must be 0 or 1, got %d", i, s.Label)
		}
	}
	legitimate, phishing := d.Counts()
	if legitimate == 0 || phishing == 0 {
		return errors.New("dataset needs both phishing and legitimate samples")
	}
	return nil
}
