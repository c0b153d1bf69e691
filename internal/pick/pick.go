// Package pick selects items from an ordered list by 1-based position.
package pick

import (
	"fmt"
	"strconv"
	"strings"
)

// Select returns the items named by rng ("2-5") or, when rng is empty,
// by list ("1,3,7"). With neither set every item is returned.
func Select[T any](all []T, rng, list string) ([]T, error) {
	switch {
	case rng != "":
		return Range(all, rng)
	case list != "":
		return List(all, list)
	default:
		return all, nil
	}
}

// Range returns items start..end inclusive.
func Range[T any](all []T, rng string) ([]T, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("range %q: want start-end", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("range %q: not a number", rng)
	}
	if start <= 0 || start > end || end > len(all) {
		return nil, fmt.Errorf("range %q outside 1-%d", rng, len(all))
	}

	return all[start-1 : end], nil
}

// List returns the listed items in the order given. Blank entries are
// skipped.
func List[T any](all []T, list string) ([]T, error) {
	var out []T
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		idx, err := atoi(p)
		if err != nil {
			return nil, fmt.Errorf("list entry %q: not a number", p)
		}
		if idx <= 0 || idx > len(all) {
			return nil, fmt.Errorf("list entry %d outside 1-%d", idx, len(all))
		}
		out = append(out, all[idx-1])
	}
	return out, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
