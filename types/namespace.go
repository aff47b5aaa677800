// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"maps"
	"strings"
)

// Namespace is the container an expression is evaluated in. It turns a
// possibly-qualified name into the ordered list of fully-qualified candidates
// to search, most specific first.
//
// A Namespace is immutable; WithAlias returns a copy.
type Namespace struct {
	name    string
	aliases map[string]string
}

// RootNamespace is the empty container.
var RootNamespace = NewNamespace("")

// NewNamespace creates a container such as "google.api.expr".
func NewNamespace(name string) *Namespace {
	return &Namespace{name: name, aliases: map[string]string{}}
}

// WithAlias returns a copy of the namespace in which the simple name alias
// expands to qualified.
func (n *Namespace) WithAlias(alias, qualified string) *Namespace {
	aliases := maps.Clone(n.aliases)
	aliases[alias] = qualified
	return &Namespace{name: n.name, aliases: aliases}
}

// Name returns the container name.
func (n *Namespace) Name() string { return n.name }

// Aliases returns a copy of the alias table.
func (n *Namespace) Aliases() map[string]string { return maps.Clone(n.aliases) }

// ResolveCandidateNames returns the names to try for name. A leading dot makes
// the name absolute. For container "a.b" and name "c" the candidates are
// "a.b.c", "a.c" and "c".
func (n *Namespace) ResolveCandidateNames(name string) []string {
	if qn, ok := strings.CutPrefix(name, "."); ok {
		if alias, found := n.FindAlias(qn); found {
			return []string{alias}
		}
		return []string{qn}
	}
	if alias, found := n.FindAlias(name); found {
		return []string{alias}
	}
	if n.name == "" {
		return []string{name}
	}
	next := n.name
	candidates := []string{next + "." + name}
	for i := strings.LastIndex(next, "."); i >= 0; i = strings.LastIndex(next, ".") {
		next = next[:i]
		candidates = append(candidates, next+"."+name)
	}
	return append(candidates, name)
}

// FindAlias expands the first segment of name when it is an alias.
func (n *Namespace) FindAlias(name string) (string, bool) {
	simple, qualifier := name, ""
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		simple, qualifier = name[:dot], name[dot:]
	}
	alias, ok := n.aliases[simple]
	if !ok {
		return "", false
	}
	return alias + qualifier, true
}
