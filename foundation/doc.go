// Package foundation answers whether a GitHub repository belongs to a
// foundation's project list.
//
// A Set is loaded from a Source the first time it is populated and is then
// read-only for the rest of the process. Sources read a JSON document over
// HTTP or a local YAML file; entries are either {owner, name} objects or
// repository URLs.
package foundation
