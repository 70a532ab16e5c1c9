package main

import (
	"bytes"
	"os"
	"regexp"

	"github.com/cockroachdb/errors"
)

// Matching the rewritten form too keeps the patch idempotent: a second pass
// maps no_routing onto itself instead of stacking another prefix. Compound
// keys like routing_parameters have no word boundary and stay untouched.
var routingToken = regexp.MustCompile(`\b(?:no_)?routing\b`)

const noRouting = "no_routing"

func DisableRouting(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read routing config %v", path)
	}
	patched := routingToken.ReplaceAll(data, []byte(noRouting))
	if bytes.Equal(patched, data) {
		Logger.Infof("routing already disabled in %v", path)
		return nil
	}
	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return errors.Wrapf(err, "write routing config %v", path)
	}
	Logger.Infof("disabled routing in %v", path)
	return nil
}
