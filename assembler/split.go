package assembler

import (
	"sort"

	"github.com/oastrace/oastrace/openapi"
)

// Fragment is one piece of a split document bound for its own output file,
// carrying just the components that belong in it.
type Fragment struct {
	Path       string
	Components *openapi.Components
}

// SplitResult is a fully split document: Main keeps every path and
// operation but has had some of its components.schemas entries replaced
// with external $refs into Fragments; the original, unsplit document is
// always recoverable by inlining every Fragment back into Main.
type SplitResult struct {
	Main      *openapi.Document
	Fragments []Fragment
}

// SplitByTag partitions doc's components.schemas by which operation tags
// reference each schema: a schema referenced by exactly one tag moves into
// that tag's fragment file; a schema referenced by more than one tag (or
// by none) stays in commonFile. Main's schema refs are rewritten to point
// at the external file the schema actually ended up in. A doc with no
// components, or whose schemas all land in one file, is returned unsplit.
func SplitByTag(doc *openapi.Document, commonFile string) SplitResult {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return SplitResult{Main: doc}
	}

	usage := schemaTagUsage(doc)

	fileFor := func(name string) string {
		tags := usage[name]
		if len(tags) == 1 {
			for t := range tags {
				return t + ".yaml"
			}
		}
		return commonFile
	}

	byFile := make(map[string][]string)
	for name := range doc.Components.Schemas {
		f := fileFor(name)
		byFile[f] = append(byFile[f], name)
	}
	if len(byFile) <= 1 {
		return SplitResult{Main: doc}
	}

	result := SplitResult{Main: doc}
	remaining := make(map[string]*openapi.Schema, len(doc.Components.Schemas))
	for name, s := range doc.Components.Schemas {
		remaining[name] = s
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	rewritten := make(map[string]*openapi.Schema, len(remaining))
	for _, file := range files {
		names := byFile[file]
		sort.Strings(names)
		fragComponents := &openapi.Components{Schemas: make(map[string]*openapi.Schema, len(names))}
		for _, name := range names {
			fragComponents.Schemas[name] = remaining[name]
			rewritten[name] = &openapi.Schema{Ref: file + "#/components/schemas/" + name}
		}
		result.Fragments = append(result.Fragments, Fragment{Path: file, Components: fragComponents})
	}

	mainComponents := &openapi.Components{
		Schemas:         rewritten,
		SecuritySchemes: doc.Components.SecuritySchemes,
		Responses:       doc.Components.Responses,
		Parameters:      doc.Components.Parameters,
		RequestBodies:   doc.Components.RequestBodies,
	}
	main := *doc
	main.Components = mainComponents
	result.Main = &main
	return result
}

// schemaTagUsage walks every operation's parameters, request body, and
// responses, recording which tags reference each top-level $ref schema
// name. A schema only ever shows up here via a direct $ref (TypeOracle
// never inlines a named type's body where a $ref belongs), so no nested
// walk is needed the way checkRefs needs one for integrity checking.
func schemaTagUsage(doc *openapi.Document) map[string]map[string]bool {
	usage := make(map[string]map[string]bool)
	record := func(schema *openapi.Schema, tags []string) {
		if schema == nil || schema.Ref == "" || len(tags) == 0 {
			return
		}
		name := schemaNameFromRef(schema.Ref)
		if name == "" {
			return
		}
		set, ok := usage[name]
		if !ok {
			set = make(map[string]bool)
			usage[name] = set
		}
		for _, t := range tags {
			set[t] = true
		}
	}

	for _, item := range doc.Paths {
		for _, op := range item.Operations() {
			for _, p := range op.Parameters {
				record(p.Schema, op.Tags)
			}
			if op.RequestBody != nil {
				for _, mt := range op.RequestBody.Content {
					record(mt.Schema, op.Tags)
				}
			}
			for _, resp := range op.Responses {
				for _, mt := range resp.Content {
					record(mt.Schema, op.Tags)
				}
			}
		}
	}
	return usage
}

func schemaNameFromRef(ref string) string {
	const prefix = "#/components/schemas/"
	if len(ref) <= len(prefix) || ref[:len(prefix)] != prefix {
		return ""
	}
	return ref[len(prefix):]
}
