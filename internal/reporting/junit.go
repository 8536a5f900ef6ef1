package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/fidelity/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluated candidate.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one reference section.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a section that fell short.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a candidate that could not be evaluated.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a ComparisonReport to JUnit XML format. Each
// candidate becomes a suite and each reference section a test case. A section
// fails when the candidate has no matching section or its score is below
// threshold.
func ConvertToJUnit(report *models.ComparisonReport, threshold float64) *JUnitTestSuites {
	suites := &JUnitTestSuites{Name: report.SourceFile}

	for i := range report.Evaluations {
		suite := convertEvaluation(&report.Evaluations[i], threshold)
		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Time += suite.Time
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	for _, f := range report.Failed {
		suites.Tests++
		suites.Errors++
		suites.TestSuites = append(suites.TestSuites, JUnitTestSuite{
			Name:   f.ModelFile,
			Tests:  1,
			Errors: 1,
			TestCases: []JUnitTestCase{{
				Name:      "load",
				Classname: f.ModelFile,
				Error: &JUnitError{
					Message: f.Error,
					Type:    "EvaluationError",
				},
			}},
		})
	}

	return suites
}

func convertEvaluation(e *models.EvaluationResult, threshold float64) JUnitTestSuite {
	key := e.Metadata.Key()
	suite := JUnitTestSuite{
		Name:      key,
		Tests:     len(e.Sections),
		Time:      float64(e.EvaluationDurationMs) / 1000.0,
		Timestamp: e.Timestamp,
		Properties: []JUnitProperty{
			{Name: "model_file", Value: e.ModelFile},
			{Name: "provider", Value: e.Metadata.Provider},
			{Name: "model", Value: e.Metadata.ModelID},
			{Name: "schema_compliance", Value: fmt.Sprintf("%.4f", e.Scores.SchemaCompliance)},
			{Name: "overall_score", Value: fmt.Sprintf("%.4f", e.Scores.OverallScore)},
			{Name: "enrichment", Value: string(e.Enrichment)},
		},
	}

	for i := range e.Sections {
		s := &e.Sections[i]
		tc := JUnitTestCase{Name: s.SourceSectionName, Classname: key}

		switch {
		case !s.Matched():
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: no matching section", s.SourceSectionName),
				Type:    "MissingSection",
				Body:    formatMissingFields(s),
			}
		case s.SectionScore < threshold:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: score=%.2f below threshold %.2f", s.SourceSectionName, s.SectionScore, threshold),
				Type:    "LowSectionScore",
				Body:    formatMissingFields(s),
			}
		}

		if tc.Failure != nil {
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return suite
}

func formatMissingFields(s *models.SectionEvaluation) string {
	var b strings.Builder
	for _, f := range s.Fields {
		if f.MatchType == models.MatchMissing {
			fmt.Fprintf(&b, "[MISSING] %d %s\n", f.SourceFieldID, f.SourceName)
		}
	}
	return b.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *models.ComparisonReport, threshold float64, path string) error {
	suites := ConvertToJUnit(report, threshold)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
