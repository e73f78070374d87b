// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/sofloc/sofloc/pkg/archive"
	"github.com/sofloc/sofloc/pkg/manifest"
	"github.com/sofloc/sofloc/pkg/version"
	"github.com/sofloc/sofloc/pkg/xmlpatch"
)

// maxGUIDAttempts bounds retries when the GUID source returns an id in use.
const maxGUIDAttempts = 8

type (
	// copyDescriptor is computed once per copy and shared by both manifest
	// patches and the new definition entry.
	copyDescriptor struct {
		GUID        string
		UpperGUID   string
		DisplayName string
		FileName    string
	}

	// snapshot captures everything a mutation may change.
	snapshot struct {
		name              string
		version           string
		solutionXML       string
		customizationsXML string
		archive           *archive.Archive
		workflows         []workflowRecord
		data              []byte
	}
)

// CopyFlow duplicates the flow sourceID under newName with a fresh GUID.
// A non-empty newVersion is applied first, as UpdateVersion would; its
// failure aborts the copy. On any error the Solution is left unchanged.
func (s *Solution) CopyFlow(sourceID, newName, newVersion string) error {
	if err := s.Load(); err != nil {
		return err
	}

	source, err := s.lookup(sourceID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(newName) == "" {
		return ErrInvalidFlowName
	}

	snap := s.snapshot()
	if err := s.copyFlow(source, newName, newVersion); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Solution) copyFlow(source workflowRecord, newName, newVersion string) error {
	if newVersion != "" {
		if err := s.applyVersion(newVersion); err != nil {
			return err
		}
	}

	desc, err := s.newCopyDescriptor(newName)
	if err != nil {
		return err
	}

	customizationsXML, err := xmlpatch.Duplicate(s.customizationsXML, xmlpatch.WorkflowPattern(source.ID), func(fragment string) string {
		fragment = xmlpatch.SubstituteGUID(fragment, source.ID, desc.GUID)
		fragment = xmlpatch.ReplaceAttribute(fragment, "Name", xmlpatch.EscapeAttribute(desc.DisplayName))
		fragment = xmlpatch.ReplaceElementText(fragment, "JsonFileName", "/"+xmlpatch.EscapeText(desc.FileName))
		return xmlpatch.ReplaceElementText(fragment, "IntroducedVersion", s.version)
	})
	if err != nil {
		return fragmentError(err, source.ID, manifest.CustomizationsFile)
	}
	s.customizationsXML = customizationsXML

	solutionXML, err := xmlpatch.Duplicate(s.solutionXML, xmlpatch.RootComponentPattern(manifest.ComponentTypeWorkflow, source.ID), func(fragment string) string {
		return xmlpatch.SubstituteGUID(fragment, source.ID, desc.GUID)
	})
	if err != nil {
		return fragmentError(err, source.ID, manifest.SolutionFile)
	}
	s.solutionXML = solutionXML

	definition, err := s.archive.Read(source.File)
	if err != nil {
		return err
	}
	s.archive.Write(desc.FileName, definition)

	if err := s.commit(); err != nil {
		return err
	}
	s.opts.logger.Debug("Copied workflow",
		"source", source.ID, "copy", desc.GUID, "name", desc.DisplayName, "file", desc.FileName)
	return nil
}

// DeleteFlow removes the flow targetID from both manifests and drops its
// definition entry. On any error the Solution is left unchanged.
func (s *Solution) DeleteFlow(targetID string) error {
	if err := s.Load(); err != nil {
		return err
	}

	target, err := s.lookup(targetID)
	if err != nil {
		return err
	}

	snap := s.snapshot()
	if err := s.deleteFlow(target); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Solution) deleteFlow(target workflowRecord) error {
	customizationsXML, err := xmlpatch.Erase(s.customizationsXML, xmlpatch.WorkflowPattern(target.ID))
	if err != nil {
		return fragmentError(err, target.ID, manifest.CustomizationsFile)
	}
	s.customizationsXML = customizationsXML

	solutionXML, err := xmlpatch.Erase(s.solutionXML, xmlpatch.RootComponentPattern(manifest.ComponentTypeWorkflow, target.ID))
	if err != nil {
		return fragmentError(err, target.ID, manifest.SolutionFile)
	}
	s.solutionXML = solutionXML

	s.archive.Remove(target.File)

	if err := s.commit(); err != nil {
		return err
	}
	s.opts.logger.Debug("Deleted workflow", "id", target.ID, "file", target.File)
	return nil
}

// UpdateVersion sets a new solution version. newVersion must be dot-separated
// integers and strictly greater than the version read at load time. The
// version token embedded in the archive name is rewritten to match.
func (s *Solution) UpdateVersion(newVersion string) error {
	if err := s.Load(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := s.applyVersion(newVersion); err != nil {
		s.restore(snap)
		return err
	}
	if err := s.commit(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// applyVersion validates newVersion and rewrites the name, the version element
// and the current version. The archive is not repacked.
func (s *Solution) applyVersion(newVersion string) error {
	if err := version.Validate(newVersion); err != nil {
		return &InvalidVersionFormatError{Version: newVersion, Err: err}
	}
	if version.Compare(newVersion, s.originalVersion) <= 0 {
		return &VersionNotAdvancingError{Version: newVersion, Baseline: s.originalVersion}
	}

	solutionXML, err := xmlpatch.ReplaceFirstElement(s.solutionXML, "Version", s.version, newVersion)
	if err != nil {
		return ErrVersionUnreadable
	}

	previous := s.version
	s.solutionXML = solutionXML
	s.name = strings.Replace(s.name, version.Snake(previous), version.Snake(newVersion), 1)
	s.version = newVersion

	s.opts.logger.Debug("Updated version", "from", previous, "to", newVersion, "name", s.name)
	return nil
}

// commit writes both manifests back, re-derives the index and repacks.
func (s *Solution) commit() error {
	s.archive.WriteString(manifest.SolutionFile, s.solutionXML)
	s.archive.WriteString(manifest.CustomizationsFile, s.customizationsXML)

	if err := s.reindex(); err != nil {
		return err
	}

	data, err := s.archive.Pack()
	if err != nil {
		return err
	}
	s.data = data
	s.opts.logger.Debug("Repacked solution", "bytes", len(data), "workflows", len(s.workflows))
	return nil
}

func (s *Solution) newCopyDescriptor(displayName string) (copyDescriptor, error) {
	for range maxGUIDAttempts {
		guid := manifest.NormalizeGUID(s.opts.newGUID())
		if guid == "" || s.inUse(guid) {
			continue
		}
		upper := strings.ToUpper(guid)
		return copyDescriptor{
			GUID:        guid,
			UpperGUID:   upper,
			DisplayName: displayName,
			FileName:    path.Join("Workflows", fileStem(displayName)+"-"+upper+".json"),
		}, nil
	}
	return copyDescriptor{}, ErrGUIDCollision
}

// inUse reports whether guid already appears in either manifest.
func (s *Solution) inUse(guid string) bool {
	pattern := xmlpatch.WorkflowPattern(guid)
	if _, ok := xmlpatch.Locate(s.customizationsXML, pattern); ok {
		return true
	}
	_, ok := xmlpatch.Locate(s.solutionXML, xmlpatch.RootComponentPattern(manifest.ComponentTypeWorkflow, guid))
	return ok
}

// fileStem drops whitespace and path separators from a display name.
func fileStem(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, name)
}

func fragmentError(err error, id, manifestName string) error {
	if errors.Is(err, xmlpatch.ErrNoMatch) {
		return &FragmentNotFoundError{ID: id, Manifest: manifestName}
	}
	return err
}

func (s *Solution) snapshot() snapshot {
	return snapshot{
		name:              s.name,
		version:           s.version,
		solutionXML:       s.solutionXML,
		customizationsXML: s.customizationsXML,
		archive:           s.archive.Clone(),
		workflows:         s.workflows,
		data:              s.data,
	}
}

func (s *Solution) restore(snap snapshot) {
	s.name = snap.name
	s.version = snap.version
	s.solutionXML = snap.solutionXML
	s.customizationsXML = snap.customizationsXML
	s.archive = snap.archive
	s.workflows = snap.workflows
	s.data = snap.data
}
