// Package naming provides shared case conversion utilities for oastrace packages.
//
// This internal package contains common string transformation functions.
// Functions include ToPascalCase, ToCamelCase, ToSnakeCase, ToKebabCase,
// ToTitleCase, and ToDisplayTitle.
//
// These functions are used for:
//   - opregistry: PascalCase path slugs that disambiguate colliding operationIDs
//   - assembler: default tag descriptions built with ToDisplayTitle
//
// As an internal package, these functions are not part of the public API
// and may change without notice.
package naming
