// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	VerboseAssembly bool `doc:"log each assembler pass"`
	MemDumpBytes    int  `doc:"default number of memory bytes to dump"`
	DisasmLines     int  `doc:"default number of lines to disassemble"`
	SourceLines     int  `doc:"default number of source lines to display"`
	NextDisasmAddr  byte `doc:"address of next disassembly"`
	NextSourceAddr  byte `doc:"address of next source line display"`
	NextMemDumpAddr byte `doc:"address of next memory dump"`
}

func newSettings() *settings {
	return &settings{
		VerboseAssembly: false,
		MemDumpBytes:    64,
		DisasmLines:     10,
		SourceLines:     10,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every setting and its current value.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Uint8:
			s = fmt.Sprintf("    %-16s %d", f.name, uint8(v.Uint()))
		default:
			s = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", s, f.doc)
	}
}

// Kind returns the type of the setting matching the key prefix, or
// reflect.Invalid if no single setting matches.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns a value to the setting matching the key prefix.
func (s *settings) Set(key string, value any) (name string, err error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", err
	}

	vIn := reflect.ValueOf(value)
	if vIn.Kind() == reflect.String || !vIn.Type().ConvertibleTo(f.typ) {
		return "", errors.New("invalid type")
	}
	if f.kind == reflect.Bool && vIn.Kind() != reflect.Bool {
		return "", errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vInConverted)

	return f.name, nil
}
