package results

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// Record is the on-disk form of one completed attempt
type Record struct {
	Package    string            `yaml:"package"`
	Outcome    types.OutcomeKind `yaml:"outcome"`
	Message    string            `yaml:"message,omitempty"`
	BuildTime  string            `yaml:"build_time,omitempty"`
	TestTime   string            `yaml:"test_time,omitempty"`
	BenchTime  string            `yaml:"bench_time,omitempty"`
	RecordedAt time.Time         `yaml:"recorded_at"`
}

// NewRecord converts an outcome into its record form
func NewRecord(pkg types.PackageID, o types.Outcome, at time.Time) Record {
	r := Record{
		Package:    pkg.String(),
		Outcome:    o.Kind,
		Message:    o.Message,
		RecordedAt: at.UTC().Truncate(time.Second),
	}
	if o.Kind == types.OutcomeSuccess {
		r.BuildTime = o.BuildTime.String()
		if o.TestTime != nil {
			r.TestTime = o.TestTime.String()
		}
		if o.BenchTime != nil {
			r.BenchTime = o.BenchTime.String()
		}
	}
	return r
}

// ToOutcome converts the record back into an outcome
func (r Record) ToOutcome() (types.Outcome, error) {
	if !r.Outcome.Valid() {
		return types.Outcome{}, fmt.Errorf("unknown outcome %q", r.Outcome)
	}
	o := types.Outcome{Kind: r.Outcome, Message: r.Message}
	if r.Outcome != types.OutcomeSuccess {
		return o, nil
	}

	build, err := time.ParseDuration(r.BuildTime)
	if err != nil {
		return types.Outcome{}, fmt.Errorf("invalid build_time: %w", err)
	}
	o.BuildTime = build
	if o.TestTime, err = optionalDuration(r.TestTime); err != nil {
		return types.Outcome{}, fmt.Errorf("invalid test_time: %w", err)
	}
	if o.BenchTime, err = optionalDuration(r.BenchTime); err != nil {
		return types.Outcome{}, fmt.Errorf("invalid bench_time: %w", err)
	}
	return o, nil
}

func optionalDuration(s string) (*time.Duration, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode renders the record as a short YAML document
func (r Record) Encode() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a record written by Encode
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	if r.Package == "" {
		return Record{}, fmt.Errorf("record has no package")
	}
	if !r.Outcome.Valid() {
		return Record{}, fmt.Errorf("record has unknown outcome %q", r.Outcome)
	}
	return r, nil
}
