package coverage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/cover"
)

const (
	profilePathRequiredMessageConstant = "coverage profile path must be provided"
	profileParseTemplateConstant       = "unable to parse coverage profile %s: %w"
	summaryLineTemplateConstant        = "%s\t%.1f%%"
	totalLabelConstant                 = "total"
)

// ErrProfilePathRequired indicates the profile path option was empty.
var ErrProfilePathRequired = errors.New(profilePathRequiredMessageConstant)

// FileCoverage reports statement coverage for a single source file.
type FileCoverage struct {
	FileName          string
	CoveredStatements int
	TotalStatements   int
}

// Percent returns the covered statement percentage for the file.
func (fileCoverage FileCoverage) Percent() float64 {
	if fileCoverage.TotalStatements == 0 {
		return 0
	}
	return float64(fileCoverage.CoveredStatements) / float64(fileCoverage.TotalStatements) * 100
}

// Summary aggregates statement coverage across a profile.
type Summary struct {
	Files             []FileCoverage
	CoveredStatements int
	TotalStatements   int
}

// Percent returns the covered statement percentage across all files.
func (summary Summary) Percent() float64 {
	if summary.TotalStatements == 0 {
		return 0
	}
	return float64(summary.CoveredStatements) / float64(summary.TotalStatements) * 100
}

// Summarize parses a coverage profile and aggregates per-file statement counts.
func Summarize(profilePath string) (Summary, error) {
	trimmedPath := strings.TrimSpace(profilePath)
	if len(trimmedPath) == 0 {
		return Summary{}, ErrProfilePathRequired
	}

	profiles, parseError := cover.ParseProfiles(trimmedPath)
	if parseError != nil {
		return Summary{}, fmt.Errorf(profileParseTemplateConstant, trimmedPath, parseError)
	}

	summary := Summary{Files: make([]FileCoverage, 0, len(profiles))}
	for _, profile := range profiles {
		fileCoverage := FileCoverage{FileName: profile.FileName}
		for _, block := range profile.Blocks {
			fileCoverage.TotalStatements += block.NumStmt
			if block.Count > 0 {
				fileCoverage.CoveredStatements += block.NumStmt
			}
		}
		summary.Files = append(summary.Files, fileCoverage)
		summary.CoveredStatements += fileCoverage.CoveredStatements
		summary.TotalStatements += fileCoverage.TotalStatements
	}

	sort.Slice(summary.Files, func(left int, right int) bool {
		return summary.Files[left].FileName < summary.Files[right].FileName
	})

	return summary, nil
}

// RenderLines formats the per-file percentages followed by the total line.
func (summary Summary) RenderLines() []string {
	lines := make([]string, 0, len(summary.Files)+1)
	for _, fileCoverage := range summary.Files {
		lines = append(lines, fmt.Sprintf(summaryLineTemplateConstant, fileCoverage.FileName, fileCoverage.Percent()))
	}
	lines = append(lines, fmt.Sprintf(summaryLineTemplateConstant, totalLabelConstant, summary.Percent()))
	return lines
}
