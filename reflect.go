// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ttsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must implement.
// See MakePart.
//
// Update is called once per simulation step, like a Component. Implementations
// usually keep their clocked state in unexported fields and update it when
// c.AtTick() returns true.
//
type Updater interface {
	Update(c *Circuit)
}

// tagField is a pin or bus field of an Updater.
type tagField struct {
	index int    // field index
	name  string // pin or bus name
	width int    // bus width, 0 for a single pin
	input bool
}

func (f *tagField) pins() []string {
	if f.width == 0 {
		return []string{f.name}
	}
	ps := make([]string, f.width)
	for i := range ps {
		ps[i] = BusPinName(f.name, i)
	}
	return ps
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// field name can be forced by adding it in the tag: `hw:"in,pin_name"`.
//
// Pins are fields of type int and buses must be non-empty arrays of int. A bus
// field [N]int can be read and written as a logic.Vector of width N with
// Circuit.Vector and Circuit.SetVector. Fields without a tag are ignored and a
// new zero value of the struct is allocated every time the part is mounted.
//
// MakePart panics if a tag or field type is invalid, or if two fields map to
// the same pin name.
//
func MakePart(t Updater) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}

	fields, err := tagFields(typ)
	if err != nil {
		panic(err)
	}
	sp := &PartSpec{
		Name: typ.Name(),
	}
	for i := range fields {
		if fields[i].input {
			sp.Inputs = append(sp.Inputs, fields[i].pins()...)
		} else {
			sp.Outputs = append(sp.Outputs, fields[i].pins()...)
		}
	}
	sp.Mount = mountPart(typ, fields)
	return sp
}

func tagFields(typ reflect.Type) ([]tagField, error) {
	var fields []tagField
	seen := make(map[string]string)
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		tf := tagField{index: i, name: strings.ToLower(f.Name)}
		tv := strings.Split(tag, ",")
		if len(tv) > 2 {
			return nil, errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name())
		}
		if len(tv) == 2 && tv[1] != "" {
			tf.name = tv[1]
		}
		switch tv[0] {
		case "in":
			tf.input = true
		case "out":
		default:
			return nil, errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name())
		}

		switch ft := f.Type; {
		case ft.Kind() == reflect.Int:
		case ft.Kind() == reflect.Array && ft.Elem().Kind() == reflect.Int:
			if ft.Len() == 0 {
				return nil, errors.Errorf("empty bus %q for field %q in %q", tf.name, f.Name, typ.Name())
			}
			tf.width = ft.Len()
		default:
			return nil, errors.Errorf("unsupported type %q for field %q in %q", ft.Kind(), f.Name, typ.Name())
		}

		if prev, ok := seen[tf.name]; ok {
			return nil, errors.Errorf("pin %q of field %q already used by field %q in %q", tf.name, f.Name, prev, typ.Name())
		}
		seen[tf.name] = f.Name
		fields = append(fields, tf)
	}
	return fields, nil
}

func mountPart(typ reflect.Type, fields []tagField) MountFn {
	return func(s *Socket) []Component {
		v := reflect.New(typ)
		e := v.Elem()
		for i := range fields {
			f := &fields[i]
			fv := e.Field(f.index)
			if f.width == 0 {
				fv.SetInt(int64(s.Pin(f.name)))
				continue
			}
			for b, n := range s.Bus(f.name, f.width) {
				fv.Index(b).SetInt(int64(n))
			}
		}
		return []Component{v.Interface().(Updater).Update}
	}
}
