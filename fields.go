package bencode

import (
	"reflect"
	"strings"
)

type field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

// fieldsToSerialize returns the serializable fields of a struct type in
// declaration order, flattening embedded structs breadth-first. A field at
// a shallower embedding level shadows deeper fields of the same name; among
// equally shallow conflicts one with an explicit tag wins, and names that
// stay ambiguous are dropped without error.
func fieldsToSerialize(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type queued struct {
		Type        reflect.Type
		ParentIndex []int
		Depth       int
	}

	type candidate struct {
		Field    field
		Depth    int
		Explicit bool
	}

	queue := []queued{{Type: ty}}

	candidates := map[string][]candidate{}

	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				continue
			}

			name, explicit := nameOf(fi, structTag)
			if name == "" {
				// this one is skipped
				continue
			}

			// derive the index of this field. ensure we allocate a new slice by
			// setting cap to the length of the parents index
			parent := item.ParentIndex
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !explicit {
				// this is an embedded field. skip if not struct
				if fi.Type.Kind() != reflect.Struct {
					continue
				}

				// queue for later analysis
				queue = append(queue, queued{fi.Type, index, item.Depth + 1})
				continue
			}

			if len(candidates[name]) == 0 {
				order = append(order, name)
			}

			candidates[name] = append(candidates[name], candidate{
				Depth:    item.Depth,
				Explicit: explicit,
				Field: field{
					Name:  name,
					Index: index,
					Type:  fi.Type,
				},
			})
		}
	}

	var fields []field

	for _, name := range order {
		// bfs order puts the shallowest candidates first
		var visible []candidate
		for _, c := range candidates[name] {
			if c.Depth == candidates[name][0].Depth {
				visible = append(visible, c)
			}
		}

		// a single visible candidate always wins
		if len(visible) == 1 {
			fields = append(fields, visible[0].Field)
			continue
		}

		// otherwise an explicitly tagged candidate wins, if there is exactly one
		var explicit []candidate
		for _, c := range visible {
			if c.Explicit {
				explicit = append(explicit, c)
			}
		}

		if len(explicit) == 1 {
			fields = append(fields, explicit[0].Field)
			continue
		}

		// still ambiguous. the name is dropped, not an error.
	}

	return fields
}

func nameOf(fi reflect.StructField, structTag string) (name string, explicit bool) {
	// parse the struct tag to get a renamed alias
	tag := fi.Tag.Get(structTag)

	if tag == "" {
		// tag is empty, take the original name
		return fi.Name, false
	}

	if tag == "-" {
		// return an empty name to indicate: skip this field
		return "", true
	}

	idx := strings.IndexByte(tag, ',')
	switch {
	case idx == -1:
		// no comma, take the full tag as explicit name
		return tag, true

	case idx > 0:
		// non empty alias, take up to the comma
		return tag[:idx], true

	default:
		// no alias before the comma, keep the field name
		return fi.Name, false
	}
}
