// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	MalformedCoordinateId Id = iota + 1
	MalformedModuleId
	UnknownConfigurationId
	UnresolvedDependencyId
	DependencyCycleId
	OracleFailureId
	AmbiguousClasspathId
	DuplicateModuleId
	InMemoryCacheId
	ConfigLoadFailedId
	OverridesInvalidId
	PermissionDeniedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is guidance text in Markdown.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry: Markdown guidance for one failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	malformedCoordinateIssue = &Issue{
		id: MalformedCoordinateId,
		mdMsg: `
# Invalid module coordinate!

Coordinates have exactly three non-empty parts separated by colons:

~~~
<organisation>:<module>:<revision>
~~~

## Things you can try:
- Check for a missing revision, e.g. ` + "`org.apache.xmlgraphics:batik-all:1.16`" + `
- Quote the coordinate if your shell treats ` + "`:`" + ` specially`,
		extLinks: []HttpLink{"https://ant.apache.org/ivy/history/latest-milestone/terminology.html"},
	}

	malformedModuleIssue = &Issue{
		id: MalformedModuleId,
		mdMsg: `
# Malformed module metadata!

A module descriptor or declaration could not be used.

## Common causes:
- An ` + "`info`" + ` element without organisation, module or revision
- A configuration that ` + "`extends`" + ` an undeclared configuration
- Configurations that extend each other in a cycle
- An unparsable ` + "`conf`" + ` mapping on a dependency

## Things you can try:
- Validate the ivy.xml against the Ivy schema
- Remove the module from the oracle cache directory and resolve again`,
		docLinks: []HttpLink{"https://ant.apache.org/ivy/history/latest-milestone/ivyfile.html"},
	}

	unknownConfigurationIssue = &Issue{
		id: UnknownConfigurationId,
		mdMsg: `
# Unknown configuration!

A requested or mapped configuration is not declared by the module.

## Things you can try:
- Run ` + "`alfine resolve <coord>`" + ` to list the declared configurations
- Add a fallback to the mapping, e.g. ` + "`runtime->master(default)`",
	}

	unresolvedDependencyIssue = &Issue{
		id: UnresolvedDependencyId,
		mdMsg: `
# Unresolved dependency!

A module reachable from the requested root could not be loaded. The message
lists the path of modules that led to it.

## Things you can try:
- Check that the revision is published in one of the configured repositories
- Declare the module locally in the overrides file
- Re-run with ` + "`--verbose`" + ` to see the oracle output`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Strict mode rejects dependency graphs with cycles.

## Things you can try:
- Run ` + "`alfine order <coord> --trace`" + ` to see where the cycle closes
- Run without ` + "`--strict`" + ` to build in DFS post-order despite the cycle`,
	}

	oracleFailureIssue = &Issue{
		id: OracleFailureId,
		mdMsg: `
# The resolution oracle failed!

The external resolver exited with an error or did not produce its output.

## Things you can try:
- Check the ` + "`oracle.command`" + ` setting (` + "`alfine config show`" + `)
- Verify that Java and the Ivy jar are installed
- Check the repository URLs in your Ivy settings file
- Re-run with ` + "`--verbose`" + ` to see the oracle output`,
		extLinks: []HttpLink{"https://ant.apache.org/ivy/history/latest-milestone/standalone.html"},
	}

	ambiguousClasspathIssue = &Issue{
		id: AmbiguousClasspathId,
		mdMsg: `
# Unexpected classpath output!

The oracle must write exactly one line of paths for a classpath query.

## Things you can try:
- Make sure the requested configurations exist on the module
- Remove stale files from the oracle cache directory and try again`,
	}

	duplicateModuleIssue = &Issue{
		id: DuplicateModuleId,
		mdMsg: `
# Conflicting module definitions!

The same coordinate was declared twice with different metadata.

## Things you can try:
- Remove one of the declarations
- Bump the revision of the locally modified module`,
	}

	inMemoryCacheIssue = &Issue{
		id: InMemoryCacheId,
		mdMsg: `
# Module not declared!

No resolution oracle is configured, so every module must be declared locally
before it is resolved.

## Things you can try:
- Add the module to the overrides file
- Configure ` + "`oracle.command`" + ` to resolve from repositories`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Run ` + "`alfine config show`" + ` to see the effective configuration
- Run ` + "`alfine config path`" + ` to see which file is used`,
	}

	overridesInvalidIssue = &Issue{
		id: OverridesInvalidId,
		mdMsg: `
# Invalid overrides file!

The local module declarations do not match the expected schema.

## Common causes:
- A coordinate without revision
- A dependency without ` + "`mapping`" + `
- ` + "`no_artifacts`" + ` together with an ` + "`artifacts`" + ` list`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Things you can try:
- Check the permissions of the cache and override directories
- Point ` + "`cache_dir`" + ` to a writable location`,
	}

	issues = map[Id]*Issue{
		malformedCoordinateIssue.Id():  malformedCoordinateIssue,
		malformedModuleIssue.Id():      malformedModuleIssue,
		unknownConfigurationIssue.Id(): unknownConfigurationIssue,
		unresolvedDependencyIssue.Id(): unresolvedDependencyIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		oracleFailureIssue.Id():        oracleFailureIssue,
		ambiguousClasspathIssue.Id():   ambiguousClasspathIssue,
		duplicateModuleIssue.Id():      duplicateModuleIssue,
		inMemoryCacheIssue.Id():        inMemoryCacheIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		overridesInvalidIssue.Id():     overridesInvalidIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

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

// Render renders the guidance with the named glamour style ("dark", "light",
// "notty" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
