// Package common provides configuration, logging and key/value reference
// replacement shared by the soundbite binaries.
//
// The {key-name} syntax lets configuration values point at entries in the
// key/value store, which is populated from variables.toml and .env files:
//
//	[weaviate]
//	api_key = "{weaviate-api-key}"
//
// Missing keys are logged as warnings and left unchanged.
package common

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ternarybob/arbor"
)

// keyRefPattern matches {key-name} references in strings
var keyRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplaceKeyReferences replaces all {key-name} references in the input string
// with values from kvMap. Unknown keys are left in place.
func ReplaceKeyReferences(input string, kvMap map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		keyName := match[1 : len(match)-1]
		if value, exists := kvMap[keyName]; exists {
			return value
		}

		logger.Warn().
			Str("reference", match).
			Msg("Unresolved key reference - key not found in KV store")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces {key-name} references in
// string fields, string slices and map[string]string values. Values are never
// logged since they usually hold secrets.
func ReplaceInStruct(v interface{}, kvMap map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	replaced := replaceInStructValue(val, kvMap, logger)
	if replaced > 0 {
		logger.Debug().Int("fields", replaced).Msg("Replaced key references in config")
	}
	return nil
}

// replaceInStructValue returns the number of values that changed
func replaceInStructValue(val reflect.Value, kvMap map[string]string, logger arbor.ILogger) int {
	replaced := 0
	replace := func(s string) (string, bool) {
		out := ReplaceKeyReferences(s, kvMap, logger)
		return out, out != s
	}

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if out, changed := replace(field.String()); changed {
				field.SetString(out)
				replaced++
			}

		case reflect.Struct:
			replaced += replaceInStructValue(field, kvMap, logger)

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				replaced += replaceInStructValue(field.Elem(), kvMap, logger)
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				if out, changed := replace(elem.String()); changed {
					elem.SetString(out)
					replaced++
				}
			}

		case reflect.Map:
			if field.IsNil() || field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
				continue
			}
			iter := field.MapRange()
			for iter.Next() {
				if out, changed := replace(iter.Value().String()); changed {
					field.SetMapIndex(iter.Key(), reflect.ValueOf(out).Convert(field.Type().Elem()))
					replaced++
				}
			}
		}
	}

	return replaced
}
