package versionfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	metadataPathRequiredMessageConstant = "project metadata path must be provided"
	versionFieldMissingMessageConstant  = "project metadata does not declare a version"
	invalidPartTemplateConstant         = "unsupported version part %q (expected major, minor, or patch)"
	invalidVersionTemplateConstant      = "persisted version %q is not a semantic version"
	metadataReadTemplateConstant        = "unable to read project metadata %s: %w"
	metadataDecodeTemplateConstant      = "unable to decode project metadata %s: %w"
	metadataWriteTemplateConstant       = "unable to write project metadata %s: %w"
	temporaryFilePatternConstant        = ".version-*"
	metadataFilePermissionConstant      = 0o644
	semverComparisonPrefixConstant      = "v"
	versionSeparatorConstant            = "."
)

// Part names a semantic-version component to increment.
type Part string

// Supported version parts.
const (
	PartMajor Part = "major"
	PartMinor Part = "minor"
	PartPatch Part = "patch"
)

var (
	// ErrMetadataPathRequired indicates the metadata path option was empty.
	ErrMetadataPathRequired = errors.New(metadataPathRequiredMessageConstant)
	// ErrVersionFieldMissing indicates the metadata file lacks a version field.
	ErrVersionFieldMissing = errors.New(versionFieldMissingMessageConstant)
)

// InvalidPartError reports an unrecognized version part parameter.
type InvalidPartError struct {
	Provided string
}

// Error implements the error interface.
func (partError InvalidPartError) Error() string {
	return fmt.Sprintf(invalidPartTemplateConstant, partError.Provided)
}

// ParsePart normalizes and validates a caller-supplied part parameter.
func ParsePart(raw string) (Part, error) {
	normalized := Part(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case PartMajor, PartMinor, PartPatch:
		return normalized, nil
	default:
		return "", InvalidPartError{Provided: raw}
	}
}

// Version is a parsed semantic version triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the version without a leading prefix.
func (version Version) String() string {
	return strings.Join([]string{
		strconv.Itoa(version.Major),
		strconv.Itoa(version.Minor),
		strconv.Itoa(version.Patch),
	}, versionSeparatorConstant)
}

// Bumped returns the version advanced by the requested part: patch increments
// patch only, minor resets patch, major resets minor and patch.
func (version Version) Bumped(part Part) Version {
	switch part {
	case PartMajor:
		return Version{Major: version.Major + 1}
	case PartMinor:
		return Version{Major: version.Major, Minor: version.Minor + 1}
	default:
		return Version{Major: version.Major, Minor: version.Minor, Patch: version.Patch + 1}
	}
}

// ParseVersion parses a bare semantic version string.
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	prefixed := semverComparisonPrefixConstant + trimmed
	if !semver.IsValid(prefixed) || semver.Canonical(prefixed) != prefixed {
		return Version{}, fmt.Errorf(invalidVersionTemplateConstant, raw)
	}
	if len(semver.Prerelease(prefixed)) > 0 || len(semver.Build(prefixed)) > 0 {
		return Version{}, fmt.Errorf(invalidVersionTemplateConstant, raw)
	}

	components := strings.SplitN(trimmed, versionSeparatorConstant, 3)
	majorValue, _ := strconv.Atoi(components[0])
	minorValue, _ := strconv.Atoi(components[1])
	patchValue, _ := strconv.Atoi(components[2])
	return Version{Major: majorValue, Minor: minorValue, Patch: patchValue}, nil
}

type projectMetadata struct {
	document map[string]any
}

// Record persists the project version inside a YAML metadata file.
type Record struct {
	metadataPath string
}

// NewRecord constructs a Record for the provided metadata file path.
func NewRecord(metadataPath string) (*Record, error) {
	trimmedPath := strings.TrimSpace(metadataPath)
	if len(trimmedPath) == 0 {
		return nil, ErrMetadataPathRequired
	}
	return &Record{metadataPath: trimmedPath}, nil
}

const versionFieldNameConstant = "version"

// Current reads and validates the persisted version.
func (record *Record) Current() (Version, error) {
	metadata, readError := record.readMetadata()
	if readError != nil {
		return Version{}, readError
	}

	rawVersion, fieldExists := metadata.document[versionFieldNameConstant]
	if !fieldExists {
		return Version{}, ErrVersionFieldMissing
	}

	versionString, isString := rawVersion.(string)
	if !isString {
		return Version{}, ErrVersionFieldMissing
	}

	return ParseVersion(versionString)
}

// Bump advances the persisted version by the requested part and writes the
// metadata file atomically. It returns the previous and the new version.
func (record *Record) Bump(part Part) (Version, Version, error) {
	metadata, readError := record.readMetadata()
	if readError != nil {
		return Version{}, Version{}, readError
	}

	rawVersion, fieldExists := metadata.document[versionFieldNameConstant]
	versionString, isString := rawVersion.(string)
	if !fieldExists || !isString {
		return Version{}, Version{}, ErrVersionFieldMissing
	}

	currentVersion, parseError := ParseVersion(versionString)
	if parseError != nil {
		return Version{}, Version{}, parseError
	}

	bumpedVersion := currentVersion.Bumped(part)
	metadata.document[versionFieldNameConstant] = bumpedVersion.String()

	if writeError := record.writeMetadata(metadata); writeError != nil {
		return Version{}, Version{}, writeError
	}

	return currentVersion, bumpedVersion, nil
}

// Path returns the metadata file path backing the record.
func (record *Record) Path() string {
	return record.metadataPath
}

func (record *Record) readMetadata() (projectMetadata, error) {
	content, readError := os.ReadFile(record.metadataPath)
	if readError != nil {
		return projectMetadata{}, fmt.Errorf(metadataReadTemplateConstant, record.metadataPath, readError)
	}

	document := map[string]any{}
	if decodeError := yaml.Unmarshal(content, &document); decodeError != nil {
		return projectMetadata{}, fmt.Errorf(metadataDecodeTemplateConstant, record.metadataPath, decodeError)
	}
	if document == nil {
		document = map[string]any{}
	}

	return projectMetadata{document: document}, nil
}

func (record *Record) writeMetadata(metadata projectMetadata) error {
	encoded, encodeError := yaml.Marshal(metadata.document)
	if encodeError != nil {
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, encodeError)
	}

	metadataDirectory := filepath.Dir(record.metadataPath)
	temporaryFile, temporaryError := os.CreateTemp(metadataDirectory, temporaryFilePatternConstant)
	if temporaryError != nil {
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, temporaryError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(encoded); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, closeError)
	}
	if permissionError := os.Chmod(temporaryPath, metadataFilePermissionConstant); permissionError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, permissionError)
	}

	if renameError := os.Rename(temporaryPath, record.metadataPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(metadataWriteTemplateConstant, record.metadataPath, renameError)
	}

	return nil
}
