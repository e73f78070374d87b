// SPDX-License-Identifier: MPL-2.0

// Package solutiontest builds solution archives for tests.
//
// The default fixture mirrors a small exported solution named
// "TestSolution_2_0_0_0.zip" at version 2.0.0.0 with two flows.
package solutiontest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

const (
	// ArchiveName is the declared file name of the default fixture.
	ArchiveName = "TestSolution_2_0_0_0.zip"
	// Version is the declared version of the default fixture.
	Version = "2.0.0.0"

	// FirstFlowID is the GUID of "First Test Flow".
	FirstFlowID = "0f48cba9-ef0c-ed11-82e4-000d3a64f6f2"
	// FirstFlowName is the display name of the first flow.
	FirstFlowName = "First Test Flow"
	// SecondFlowID is the GUID of "Second Test Flow".
	SecondFlowID = "f4910f26-8210-ec11-b6e6-002248842287"
	// SecondFlowName is the display name of the second flow.
	SecondFlowName = "Second Test Flow"
)

type (
	// Flow describes one flow written into the fixture.
	Flow struct {
		ID   string
		Name string
		// Definition is the JSON body of the flow file.
		Definition string
	}

	// Fixture describes the content of a generated solution archive.
	Fixture struct {
		Version string
		Flows   []Flow
		// Newline is the line terminator used in both manifests ("\n" or "\r\n").
		Newline string
		// Omit lists entry names that are left out of the archive.
		Omit []string
		// SolutionEdit and CustomizationsEdit post-process the manifest texts.
		SolutionEdit       func(string) string
		CustomizationsEdit func(string) string
	}
)

// Default returns the fixture with the two standard test flows.
func Default() Fixture {
	return Fixture{
		Version: Version,
		Newline: "\n",
		Flows: []Flow{
			{ID: FirstFlowID, Name: FirstFlowName, Definition: definition(FirstFlowName)},
			{ID: SecondFlowID, Name: SecondFlowName, Definition: definition(SecondFlowName)},
		},
	}
}

// FileName returns the archive entry name of a flow definition.
func (f Flow) FileName() string {
	return fmt.Sprintf("Workflows/%s-%s.json", strings.ReplaceAll(f.Name, " ", ""), strings.ToUpper(f.ID))
}

// SolutionXML renders the package manifest.
func (fx Fixture) SolutionXML() string {
	var b strings.Builder
	b.WriteString(`<ImportExportXml version="9.2.22083.174" SolutionPackageVersion="9.2" languagecode="1033" generatedBy="CrmLive" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <SolutionManifest>
    <UniqueName>TestSolution</UniqueName>
    <LocalizedNames>
      <LocalizedName description="Test Solution" languagecode="1033" />
    </LocalizedNames>
    <Descriptions />
    <Version>` + fx.Version + `</Version>
    <Managed>0</Managed>
    <Publisher>
      <UniqueName>testpublisher</UniqueName>
      <LocalizedNames>
        <LocalizedName description="Test Publisher" languagecode="1033" />
      </LocalizedNames>
      <CustomizationPrefix>tst</CustomizationPrefix>
    </Publisher>
    <RootComponents>`)
	for _, f := range fx.Flows {
		b.WriteString("\n      <RootComponent type=\"29\" id=\"{" + f.ID + "}\" behavior=\"0\" />")
	}
	b.WriteString(`
    </RootComponents>
    <MissingDependencies />
  </SolutionManifest>
</ImportExportXml>`)
	return fx.finish(b.String(), fx.SolutionEdit)
}

// CustomizationsXML renders the customizations manifest.
func (fx Fixture) CustomizationsXML() string {
	var b strings.Builder
	b.WriteString(`<ImportExportXml xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" OrganizationVersion="9.2.22083.174" OrganizationSchemaType="Standard">
  <Entities />
  <Roles />
  <Workflows>`)
	for _, f := range fx.Flows {
		b.WriteString(`
    <Workflow WorkflowId="{` + f.ID + `}" Name="` + f.Name + `">
      <JsonFileName>/` + f.FileName() + `</JsonFileName>
      <Type>1</Type>
      <Category>5</Category>
      <StateCode>1</StateCode>
      <StatusCode>2</StatusCode>
      <IntroducedVersion>1.0.0.0</IntroducedVersion>
      <IsCustomizable>1</IsCustomizable>
      <PrimaryEntity>none</PrimaryEntity>
      <LocalizedNames>
        <LocalizedName languagecode="1033" description="` + f.Name + `" />
      </LocalizedNames>
    </Workflow>`)
	}
	b.WriteString(`
  </Workflows>
  <FieldSecurityProfiles />
  <Templates />
  <Languages>
    <Language>1033</Language>
  </Languages>
</ImportExportXml>`)
	return fx.finish(b.String(), fx.CustomizationsEdit)
}

// Bytes renders the fixture as a zip archive.
func (fx Fixture) Bytes(t testing.TB) []byte {
	t.Helper()

	omitted := make(map[string]bool, len(fx.Omit))
	for _, name := range fx.Omit {
		omitted[name] = true
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	add := func(name, content string) {
		if omitted[name] {
			return
		}
		writer, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create fixture entry %s: %v", name, err)
		}
		if content == "" {
			return
		}
		if _, err := writer.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write fixture entry %s: %v", name, err)
		}
	}

	add("Workflows/", "")
	for _, f := range fx.Flows {
		add(f.FileName(), f.Definition)
	}
	add("[Content_Types].xml", `<?xml version="1.0" encoding="utf-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/octet-stream" /><Default Extension="json" ContentType="application/octet-stream" /></Types>`)
	add("customizations.xml", fx.CustomizationsXML())
	add("solution.xml", fx.SolutionXML())

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close fixture archive: %v", err)
	}
	return buf.Bytes()
}

// DefaultBytes renders the default fixture.
func DefaultBytes(t testing.TB) []byte {
	t.Helper()
	return Default().Bytes(t)
}

func (fx Fixture) finish(text string, edit func(string) string) string {
	if fx.Newline != "" && fx.Newline != "\n" {
		text = strings.ReplaceAll(text, "\n", fx.Newline)
	}
	if edit != nil {
		text = edit(text)
	}
	return text
}

func definition(name string) string {
	return `{"properties":{"displayName":"` + name + `","definition":{"$schema":"https://schema.management.azure.com/providers/Microsoft.Logic/schemas/2016-06-01/workflowdefinition.json#","triggers":{"manual":{"type":"Request","kind":"Button"}},"actions":{}}},"schemaVersion":"1.0.0.0"}`
}
