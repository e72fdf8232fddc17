// internal/filter/fieldpath.go
package filter

import (
	"fmt"
	"strings"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Field path resolution for customer records.
 *
 * Resolves dotted paths ("location.city", "services.fees.name") through
 * types.Record values. A segment that lands on a sub-entity collection
 * (services, routes, invoices, fees) with segments remaining turns the
 * resolution into a projection: the rest of the path is resolved against
 * every element independently and all reached values are returned.
 *
 * Key functions:
 *   - ParsePath: splits and validates a dotted path once at compile time
 *   - Resolve: walks a record following the path
 *
 * Projection semantics: the caller ORs the comparison across Values. An
 * empty collection yields zero values, which never matches anything.
 *
 * Terminal string slices (tags, route service ids) are returned whole so
 * set operators can test membership directly.
 */

// MaxPathDepth bounds path length. The deepest real path has three segments.
const MaxPathDepth = 8

// Path is a pre-split dotted field path.
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

// ParsePath splits a dotted field path.
// Returns ErrFieldNotFound for empty paths, empty segments or paths deeper than MaxPathDepth.
func ParsePath(field string) (Path, error) {
	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("%w: empty field path", types.ErrFieldNotFound)
	}
	segs := strings.Split(field, ".")
	if len(segs) > MaxPathDepth {
		return nil, fmt.Errorf("%w: path %q exceeds depth %d", types.ErrFieldNotFound, field, MaxPathDepth)
	}
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: path %q has an empty segment", types.ErrFieldNotFound, field)
		}
	}
	return Path(segs), nil
}

// ResolveResult contains every value reached by a path.
type ResolveResult struct {
	Values    []any // one entry per reached leaf; nil entries are null values
	Projected bool  // true if the path crossed a sub-entity collection
}

// Resolve traverses rec following path.
// Returns ErrFieldNotFound if a segment names a key the record does not define
// or the path continues past a scalar.
func Resolve(path Path, rec types.Record) (ResolveResult, error) {
	if len(path) == 0 {
		return ResolveResult{}, types.ErrFieldNotFound
	}
	var result ResolveResult
	if err := resolveRecursive(path, rec, &result); err != nil {
		return ResolveResult{}, err
	}
	return result, nil
}

// resolveRecursive appends the values reached from current into result.
func resolveRecursive(path Path, current any, result *ResolveResult) error {
	if len(path) == 0 {
		result.Values = append(result.Values, current)
		return nil
	}

	switch v := current.(type) {
	case types.Record:
		next, ok := v.Field(path[0])
		if !ok {
			return fmt.Errorf("%w: %s", types.ErrFieldNotFound, path[0])
		}
		return resolveRecursive(path[1:], next, result)

	case []types.Record:
		// Projection: remaining path resolved per element
		result.Projected = true
		for _, elem := range v {
			if err := resolveRecursive(path, elem, result); err != nil {
				return err
			}
		}
		return nil

	case nil:
		// Null at an intermediate position resolves to null
		result.Values = append(result.Values, nil)
		return nil

	default:
		// Scalar or string slice but path continues
		return fmt.Errorf("%w: cannot descend into %s", types.ErrFieldNotFound, path[0])
	}
}
