package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidRange = errors.New("invalid hostlist range")

// maxHosts bounds what one expression may expand to. It is enforced
// before names are generated, so a typo like node[1-9999999] or
// a[0-4000]b[0-4000] fails without allocating millions of names.
const maxHosts = 4096

// ParseHostlist expands a Slurm style hostlist such as
// "host1,node[01-03],10.0.0.[1-3]". Zero padding of a range start is kept
// for every generated name. Blank items are dropped.
func ParseHostlist(expr string) ([]string, error) {
	var hosts []string

	for _, item := range splitTopLevel(expr) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		expanded, err := expand(item)
		if err != nil {
			return nil, err
		}

		if len(hosts)+len(expanded) > maxHosts {
			return nil, fmt.Errorf("%w: %q expands to more than %d hosts", ErrInvalidRange, expr, maxHosts)
		}
		hosts = append(hosts, expanded...)
	}

	return hosts, nil
}

// splitTopLevel splits on commas that are not inside brackets.
func splitTopLevel(expr string) []string {
	var (
		items []string
		depth int
		start int
	)

	for i, r := range expr {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, expr[start:i])
				start = i + 1
			}
		}
	}

	return append(items, expr[start:])
}

func expand(item string) ([]string, error) {
	open := strings.IndexByte(item, '[')
	if open < 0 {
		if strings.ContainsRune(item, ']') {
			return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidRange, item)
		}
		return []string{item}, nil
	}

	end := strings.IndexByte(item[open:], ']')
	if end < 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidRange, item)
	}
	end += open

	prefix, body, rest := item[:open], item[open+1:end], item[end+1:]

	values, err := expandBody(body)
	if err != nil {
		return nil, fmt.Errorf("%w in %q", err, item)
	}

	suffixes, err := expand(rest)
	if err != nil {
		return nil, err
	}

	if len(values)*len(suffixes) > maxHosts {
		return nil, fmt.Errorf("%w: %q expands to more than %d hosts", ErrInvalidRange, item, maxHosts)
	}

	hosts := make([]string, 0, len(values)*len(suffixes))
	for _, v := range values {
		for _, s := range suffixes {
			hosts = append(hosts, prefix+v+s)
		}
	}

	return hosts, nil
}

// expandBody handles the inside of one bracket group, e.g. "01-03,07".
func expandBody(body string) ([]string, error) {
	var values []string

	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			hi = lo
		}

		from, err := strconv.Atoi(lo)
		if err != nil || from < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, part)
		}
		to, err := strconv.Atoi(hi)
		if err != nil || to < from {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, part)
		}

		if len(values)+to-from+1 > maxHosts {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, body)
		}

		width := len(lo)
		for i := from; i <= to; i++ {
			values = append(values, fmt.Sprintf("%0*d", width, i))
		}
	}

	return values, nil
}
