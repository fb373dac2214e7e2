package handler

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

const deckExt = ".dsh"

// Validator collects the problems of one request's parameters
type Validator struct {
	problems []string
}

// NewValidator creates an empty validator
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) fail(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// StorageKey checks a key naming an object in input or output storage.
// Keys are relative, slash separated and stay inside the bucket.
func (v *Validator) StorageKey(field, key string) {
	switch {
	case strings.TrimSpace(key) == "":
		v.fail("%s is required", field)
	case strings.Contains(key, ".."):
		v.fail("%s contains invalid path traversal", field)
	case strings.HasPrefix(key, "/") || strings.Contains(key, "\\"):
		v.fail("%s must be a relative slash separated key", field)
	}
}

// DeckKey checks a key naming a decksh source
func (v *Validator) DeckKey(field, key string) {
	before := len(v.problems)
	v.StorageKey(field, key)
	if len(v.problems) == before && path.Ext(key) != deckExt {
		v.fail("%s must end with %s", field, deckExt)
	}
}

// SourceRef checks the optional key a posted source resolves imports against
func (v *Validator) SourceRef(field, key string) {
	if key != "" {
		v.StorageKey(field, key)
	}
}

// Format checks an optional output format against the pipeline's formats
func (v *Validator) Format(format string, allowed []string) {
	if format != "" && !slices.Contains(allowed, format) {
		v.fail("format must be one of: %s", strings.Join(allowed, ", "))
	}
}

// Problems lists every failed check in order
func (v *Validator) Problems() []string {
	return v.problems
}

// Err joins the problems into one error, or returns nil
func (v *Validator) Err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(v.problems, "; "))
}
