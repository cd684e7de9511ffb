// Package schema validates serialized experiment documents against the
// embedded CUE definition. It is the strict counterpart to the lenient
// decoder in model: FromCompleteJSON accepts partial provider data, while
// Validate rejects documents whose shape would break downstream consumers.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed document.cue
var documentCUE string

var (
	compileOnce sync.Once
	documentDef cue.Value
	compileErr  error
)

// documentSchema compiles the embedded schema once and caches the
// #Document definition.
func documentSchema() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(documentCUE, cue.Filename("document.cue"))
		if err := v.Err(); err != nil {
			compileErr = fmt.Errorf("compile document schema: %w", err)
			return
		}
		documentDef = v.LookupPath(cue.ParsePath("#Document"))
		if err := documentDef.Err(); err != nil {
			compileErr = fmt.Errorf("lookup #Document: %w", err)
		}
	})
	return documentDef, compileErr
}

// Validate checks a serialized document against the schema. Returns nil
// when the document conforms; otherwise an error describing every
// violation CUE found.
func Validate(doc []byte) error {
	def, err := documentSchema()
	if err != nil {
		return err
	}

	// JSON is a subset of CUE, so the document compiles directly.
	ctx := def.Context()
	val := ctx.CompileBytes(doc, cue.Filename("document.json"))
	if err := val.Err(); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("document schema: %s", errors.Details(err, nil))
	}
	return nil
}
