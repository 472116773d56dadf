package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/baiirun/mspdesk/internal/model"
)

// enumValue is a pflag.Value restricted to the values valid accepts, so a
// bad --status or --visibility fails at flag parsing.
type enumValue[T ~string] struct {
	p     *T
	valid func(T) bool
	typ   string
	names string
}

var _ pflag.Value = (*enumValue[model.Visibility])(nil)

func newEnumValue[T ~string](p *T, def T, typ string, valid func(T) bool, names ...T) *enumValue[T] {
	*p = def
	list := make([]string, len(names))
	for i, n := range names {
		list[i] = string(n)
	}
	return &enumValue[T]{p: p, valid: valid, typ: typ, names: strings.Join(list, ", ")}
}

func (e *enumValue[T]) String() string { return string(*e.p) }

func (e *enumValue[T]) Type() string { return e.typ }

func (e *enumValue[T]) Set(s string) error {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	if !e.valid(v) {
		return fmt.Errorf("must be one of %s", e.names)
	}
	*e.p = v
	return nil
}

func visibilityFlag(p *model.Visibility) *enumValue[model.Visibility] {
	return newEnumValue(p, model.VisibilityInternal, "visibility", model.Visibility.IsValid,
		model.VisibilityInternal, model.VisibilityPublic)
}

func statusFlag(p *model.TicketStatus) *enumValue[model.TicketStatus] {
	return newEnumValue(p, "", "status", model.TicketStatus.IsValid, model.TicketStatuses...)
}

func priorityFlag(p *model.Priority, def model.Priority) *enumValue[model.Priority] {
	return newEnumValue(p, def, "priority", model.Priority.IsValid, model.Priorities...)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
