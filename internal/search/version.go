package search

import (
	"context"
	"fmt"
)

// CheckIndexVersion reports whether index needs rebuilding: it is missing,
// or its stored mapping version is older than MappingVersion. Engines that
// cannot read mappings are only checked for existence.
func CheckIndexVersion(ctx context.Context, e Engine, index string) (bool, error) {
	exists, err := e.IndexExists(ctx, index)
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", index, err)
	}
	if !exists {
		return true, nil
	}

	vp, ok := e.(VersionProvider)
	if !ok {
		return false, nil
	}

	stored, err := vp.MappingVersion(ctx, index)
	if err != nil {
		return false, fmt.Errorf("failed to read mapping version of %s: %w", index, err)
	}
	return stored < MappingVersion, nil
}
