/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package viperutil

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"strings"

	"github.com/hyperledger-labs/modmul/common/flogging"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("viperutil")

// ConfigPaths returns the directories searched for a config file:
// $MODMUL_CFG_PATH when set, the working directory, and /etc/modmul.
func ConfigPaths() []string {
	var paths []string
	if p := os.Getenv("MODMUL_CFG_PATH"); p != "" {
		paths = append(paths, p)
	}
	return append(paths, ".", "/etc/modmul")
}

// InitViper prepares v to read configName.yaml from ConfigPaths and to take
// overrides from environment variables named <PREFIX>_<SECTION>_<KEY>.
func InitViper(v *viper.Viper, configName, envPrefix string) {
	for _, p := range ConfigPaths() {
		v.AddConfigPath(p)
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

type viperGetter func(key string) interface{}

func getKeysRecursively(base string, getKey viperGetter, nodeKeys map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, node := range nodeKeys {
		fqKey := base + key

		switch node := node.(type) {
		case map[interface{}]interface{}:
			logger.Debugf("Found map[interface{}]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, toMapStringInterface(node))
		case map[string]interface{}:
			logger.Debugf("Found map[string]interface{} value for %s", fqKey)
			result[key] = getKeysRecursively(fqKey+".", getKey, node)
		default:
			result[key] = getKey(fqKey)
		}
	}
	return result
}

func toMapStringInterface(m map[interface{}]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for k, v := range m {
		k, ok := k.(string)
		if !ok {
			panic(fmt.Sprintf("Non string %v, %v: key-entry: %v", k, v, k))
		}
		result[k] = v
	}
	return result
}

// customDecodeHook parses strings of the format "[thing1, thing2, thing3]"
// into string slices. Note that whitespace around slice elements is removed.
func customDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
		return data, nil
	}

	raw := data.(string)
	l := len(raw)
	if l > 1 && raw[0] == '[' && raw[l-1] == ']' {
		slice := strings.Split(raw[1:l-1], ",")
		for i, v := range slice {
			slice[i] = strings.TrimSpace(v)
		}
		return slice, nil
	}

	return data, nil
}

var (
	bigIntType = reflect.TypeOf(&big.Int{})
	bytesType  = reflect.TypeOf([]byte{})
)

// bigIntDecodeHook reads *big.Int values written in hexadecimal, with or
// without a 0x prefix. Integers from the YAML decoder are taken as they are.
func bigIntDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t != bigIntType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(v), "0x"), "0X")
		if raw == "" {
			return nil, nil
		}
		n, ok := new(big.Int).SetString(raw, 16)
		if !ok {
			return nil, errors.Errorf("value '%s' is not a hexadecimal integer", v)
		}
		return n, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	}
	return data, nil
}

// hexBytesDecodeHook reads []byte values written as hexadecimal strings.
func hexBytesDecodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t != bytesType {
		return data, nil
	}
	raw := strings.TrimPrefix(strings.TrimSpace(data.(string)), "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "value '%s' is not a hexadecimal byte string", data)
	}
	return b, nil
}

// EnhancedExactUnmarshal unmarshals the settings of v into output, which must
// be a pointer to a struct. Unlike viper.Unmarshal it fails on keys output
// has no field for, and it understands durations, bracketed string slices,
// hexadecimal integers and hexadecimal byte strings.
func EnhancedExactUnmarshal(v *viper.Viper, output interface{}) error {
	oType := reflect.TypeOf(output)
	if oType == nil || oType.Kind() != reflect.Ptr {
		return errors.Errorf("supplied output argument must be a pointer to a struct but is not pointer")
	}
	if oType.Elem().Kind() != reflect.Struct {
		return errors.Errorf("supplied output argument must be a pointer to a struct, but it is pointer to something else")
	}

	baseKeys := v.AllSettings()
	leafKeys := getKeysRecursively("", v.Get, baseKeys)

	logger.Debugf("%+v", leafKeys)
	config := &mapstructure.DecoderConfig{
		ErrorUnused:      true,
		Metadata:         nil,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			hexBytesDecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			customDecodeHook,
			bigIntDecodeHook,
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(leafKeys)
}
