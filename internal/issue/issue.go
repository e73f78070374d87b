// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ArchiveUnreadableId Id = iota + 1
	ManifestMissingId
	VersionRejectedId
	WorkflowNotFoundId
	ConfigLoadFailedId
	OutputWriteFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue Markdown with the glamour style at stylePath
// ("dark", "light", "notty", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	archiveUnreadableIssue = &Issue{
		id: ArchiveUnreadableId,
		mdMsg: `
# The file is not a solution archive!

The input could not be unzipped. sofloc expects the zip produced by a
solution export.

## Things you can try:
- Check that you passed the exported ` + "`.zip`" + ` file and not an extracted folder
- Export the solution again; partially downloaded files cannot be read
- If the archive is base64 text, pass ` + "`--base64`",
		extLinks: []HttpLink{"https://learn.microsoft.com/power-apps/maker/data-platform/export-solutions"},
	}

	manifestMissingIssue = &Issue{
		id: ManifestMissingId,
		mdMsg: `
# Solution manifest missing!

A solution archive must contain both ` + "`solution.xml`" + ` and
` + "`customizations.xml`" + ` at its root.

## Things you can try:
- List the archive content:
~~~
$ unzip -l MySolution_1_0_0_0.zip
~~~
- Export the solution again instead of re-zipping an extracted folder`,
	}

	versionRejectedIssue = &Issue{
		id: VersionRejectedId,
		mdMsg: `
# Version rejected!

A new version must be dot-separated integers (e.g. ` + "`2.1.0.0`" + ` or
` + "`2.1`" + `) and strictly greater than the version the archive was exported with.

## Things you can try:
- Check the current version:
~~~
$ sofloc version show MySolution_2_0_0_0.zip
~~~
- Raise any component, for instance the minor one: ` + "`2.1.0.0`",
	}

	workflowNotFoundIssue = &Issue{
		id: WorkflowNotFoundId,
		mdMsg: `
# Flow not found!

The flow id does not match a flow referenced from the archive, ` + "`solution.xml`" + `
and ` + "`customizations.xml`" + ` at the same time.

## Things you can try:
- List the flows and copy the id from the output:
~~~
$ sofloc flows list MySolution_1_0_0_0.zip
~~~
- Export the solution again if it was edited by hand`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show the config file location:
~~~
$ sofloc config path
~~~
- Recreate a default file:
~~~
$ sofloc config init
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write the archive!

The rewritten solution could not be saved.

## Things you can try:
- Pass ` + "`--force`" + ` to replace an existing file
- Choose another destination with ` + "`--out`" + `
- Check that the output directory is writable`,
	}

	issues = map[Id]*Issue{
		archiveUnreadableIssue.Id(): archiveUnreadableIssue,
		manifestMissingIssue.Id():   manifestMissingIssue,
		versionRejectedIssue.Id():   versionRejectedIssue,
		workflowNotFoundIssue.Id():  workflowNotFoundIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		outputWriteFailedIssue.Id(): outputWriteFailedIssue,
	}
)

// Values returns every catalog issue ordered by id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, iss := range issues {
		values = append(values, iss)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
