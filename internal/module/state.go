package module

import (
	"encoding/json"
	"fmt"
	"go/token"
	"reflect"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/jcmexdev/statesaga/internal/store"
)

// Update applies mutate to a deep copy of the current state and commits the
// result if it differs structurally from the original. It reports whether a
// commit happened.
//
// The commit is described as "@@<name>/setState[f1,f2]", listing the changed
// top-level fields by their JSON names. In production the field list is
// omitted and no diff is recorded.
func (m *Module[S]) Update(mutate func(draft *S)) (bool, error) {
	a := m.App()
	if a == nil {
		return false, ErrNotRegistered
	}

	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	// base and draft both go through the JSON round trip, so values held
	// in interface fields (int vs float64) compare like with like.
	base, err := deepCopy(m.State())
	if err != nil {
		return false, fmt.Errorf("module: %s: copy state: %w", m.name, err)
	}
	draft, err := deepCopy(base)
	if err != nil {
		return false, fmt.Errorf("module: %s: copy state: %w", m.name, err)
	}
	mutate(&draft)

	description := "@@" + m.name + "/setState"
	if a.Config.IsDevelopment() {
		var changes fieldReporter
		if cmp.Equal(base, draft, ignoreUnexported, cmp.Reporter(&changes)) {
			return false, nil
		}
		if fields := changes.fields(); len(fields) > 0 {
			description += "[" + strings.Join(fields, ",") + "]"
		}
	} else if cmp.Equal(base, draft, ignoreUnexported) {
		return false, nil
	}

	a.Store.Dispatch(store.SetStateAction{Module: m.name, State: draft, Description: description})
	return true, nil
}

// SetState copies the given keys onto the state. Keys are JSON field names;
// unknown keys are ignored.
func (m *Module[S]) SetState(partial map[string]any) (bool, error) {
	// merge leaves the draft untouched on failure, so nothing is committed.
	var mergeErr error
	changed, err := m.Update(func(draft *S) {
		mergeErr = merge(draft, partial)
	})
	if err != nil {
		return false, err
	}
	if mergeErr != nil {
		return changed, fmt.Errorf("module: %s: set state: %w", m.name, mergeErr)
	}
	return changed, nil
}

// ignoreUnexported skips unexported struct fields; deepCopy never carries
// them, so they cannot take part in a change.
var ignoreUnexported = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && !token.IsExported(sf.Name())
}, cmp.Ignore())

func deepCopy[S any](v S) (S, error) {
	var out S
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func merge[S any](draft *S, partial map[string]any) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	for k, v := range partial {
		fields[k] = v
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return err
	}
	var next S
	if err := json.Unmarshal(raw, &next); err != nil {
		return err
	}
	*draft = next
	return nil
}

// fieldReporter is a cmp.Reporter collecting the top-level fields that
// differ.
type fieldReporter struct {
	path    cmp.Path
	changed map[string]struct{}
}

func (r *fieldReporter) PushStep(ps cmp.PathStep) { r.path = append(r.path, ps) }

func (r *fieldReporter) PopStep() { r.path = r.path[:len(r.path)-1] }

func (r *fieldReporter) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}
	if r.changed == nil {
		r.changed = map[string]struct{}{}
	}
	if name, ok := topLevelName(r.path); ok {
		r.changed[name] = struct{}{}
	}
}

func (r *fieldReporter) fields() []string {
	out := make([]string, 0, len(r.changed))
	for name := range r.changed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// topLevelName returns the first field, key or index below the root.
func topLevelName(path cmp.Path) (string, bool) {
	for i := 1; i < len(path); i++ {
		switch step := path[i].(type) {
		case cmp.StructField:
			return jsonName(path[i-1].Type(), step), true
		case cmp.MapIndex:
			return fmt.Sprint(step.Key().Interface()), true
		case cmp.SliceIndex:
			k := step.Key()
			if k < 0 {
				ix, iy := step.SplitKeys()
				k = max(ix, iy)
			}
			return fmt.Sprint(k), true
		}
	}
	return "", false
}

func jsonName(parent reflect.Type, field cmp.StructField) string {
	for parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return field.Name()
	}
	sf := parent.Field(field.Index())
	tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	return tag
}
