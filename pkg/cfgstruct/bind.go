// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package cfgstruct registers command line flags for configuration structs.
//
// Every exported field becomes a flag named after the field path in
// hyphenated lower case: a field GroupSize inside a field Routing becomes
// "routing.group-size". The `help`, `default` and `hidden` struct tags
// describe the flag.
package cfgstruct

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/pflag"
)

// BindOpt configures Bind.
type BindOpt func(*bindOptions)

type bindOptions struct {
	prefix string
}

// Prefix names the flags of the struct below prefix.
func Prefix(prefix string) BindOpt {
	return func(opts *bindOptions) { opts.prefix = prefix }
}

// Bind sets flags on flags that match the configuration struct config,
// which must be a pointer to a struct. Fields are filled with their
// defaults immediately and updated when the flags are parsed.
func Bind(flags *pflag.FlagSet, config interface{}, opts ...BindOpt) {
	var options bindOptions
	for _, opt := range opts {
		opt(&options)
	}

	ptr := reflect.ValueOf(config)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("invalid config type: %#v; expected pointer to struct", config))
	}
	bindConfig(flags, options.prefix, ptr.Elem())
}

func bindConfig(flags *pflag.FlagSet, prefix string, val reflect.Value) {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		fieldval := val.Field(i)
		name := join(prefix, hyphenate(field.Name))

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			bindConfig(flags, name, fieldval)
			continue
		}

		help := field.Tag.Get("help")
		def := field.Tag.Get("default")
		ptr := fieldval.Addr().Interface()

		switch ptr := ptr.(type) {
		case *string:
			flags.StringVar(ptr, name, def, help)
		case *bool:
			flags.BoolVar(ptr, name, parseBool(name, def), help)
		case *time.Duration:
			flags.DurationVar(ptr, name, parseDuration(name, def), help)
		case *int:
			flags.IntVar(ptr, name, int(parseInt(name, def, 0)), help)
		case *int64:
			flags.Int64Var(ptr, name, parseInt(name, def, 64), help)
		case *uint:
			flags.UintVar(ptr, name, uint(parseUint(name, def, 0)), help)
		case *uint64:
			flags.Uint64Var(ptr, name, parseUint(name, def, 64), help)
		case *float64:
			flags.Float64Var(ptr, name, parseFloat(name, def), help)
		default:
			panic(fmt.Sprintf("invalid field type: %s", field.Type.String()))
		}

		if field.Tag.Get("hidden") == "true" {
			if err := flags.MarkHidden(name); err != nil {
				panic(err)
			}
		}
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// hyphenate turns a Go field name into a flag name.
func hyphenate(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startOfWord := i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])))
			if startOfWord {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseBool(name, def string) bool {
	if def == "" {
		return false
	}
	v, err := strconv.ParseBool(def)
	if err != nil {
		panic(fmt.Sprintf("invalid default for %s: %v", name, err))
	}
	return v
}

func parseDuration(name, def string) time.Duration {
	if def == "" {
		return 0
	}
	v, err := time.ParseDuration(def)
	if err != nil {
		panic(fmt.Sprintf("invalid default for %s: %v", name, err))
	}
	return v
}

func parseInt(name, def string, bits int) int64 {
	if def == "" {
		return 0
	}
	v, err := strconv.ParseInt(def, 0, bits)
	if err != nil {
		panic(fmt.Sprintf("invalid default for %s: %v", name, err))
	}
	return v
}

func parseUint(name, def string, bits int) uint64 {
	if def == "" {
		return 0
	}
	v, err := strconv.ParseUint(def, 0, bits)
	if err != nil {
		panic(fmt.Sprintf("invalid default for %s: %v", name, err))
	}
	return v
}

func parseFloat(name, def string) float64 {
	if def == "" {
		return 0
	}
	v, err := strconv.ParseFloat(def, 64)
	if err != nil {
		panic(fmt.Sprintf("invalid default for %s: %v", name, err))
	}
	return v
}
