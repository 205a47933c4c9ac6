package config

import (
	"reflect"
	"sort"

	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

/*
Params is a set of hyper-parameters overriding a configuration by field name
*/
type Params map[string]float64

/*
Get value of the parameter by name if exists and dflt value otherwise
*/
func (p Params) Get(name string, dflt float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

/*
Apply returns a copy of configuration with numeric and boolean fields replaced by params.
Names are mapstructure keys, adam_beta1 and adam_beta2 address AdamBetas.
*/
func (p Params) Apply(c Config) (Config, error) {
	fields := fieldsOf(&c)
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := p[k]
		switch k {
		case "adam_beta1":
			c.AdamBetas[0] = v
			continue
		case "adam_beta2":
			c.AdamBetas[1] = v
			continue
		}
		ref, ok := fields[k]
		if !ok {
			return c, xerrors.Errorf("config does not have field `%v`: %w", k, model.ErrInvalidConfiguration)
		}
		switch ref.Kind() {
		case reflect.Int, reflect.Int64:
			ref.SetInt(int64(v))
		case reflect.Float64:
			ref.SetFloat(v)
		case reflect.Bool:
			ref.SetBool(v != 0)
		default:
			return c, xerrors.Errorf("field `%v` is not numeric: %w", k, model.ErrInvalidConfiguration)
		}
	}
	return c, nil
}

func fieldsOf(c *Config) map[string]reflect.Value {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	m := map[string]reflect.Value{}
	for i := 0; i < t.NumField(); i++ {
		m[t.Field(i).Tag.Get("mapstructure")] = v.Field(i)
	}
	return m
}

var presets = map[string]Params{
	"quick": {
		"train_num_steps":     200,
		"save_and_eval_every": 50,
		"synthetic_data_size": 1000,
		"train_lr":            1e-3,
	},
	"nonlinear_additive": {
		"train_num_steps":            3000,
		"save_and_eval_every":        500,
		"synthetic_data_size":        10000,
		"synthetic_data_feature_dim": 10,
		"train_lr":                   1e-3,
	},
	"orange_skin_additive": {
		"train_num_steps":            3000,
		"save_and_eval_every":        500,
		"synthetic_data_size":        10000,
		"synthetic_data_feature_dim": 10,
		"hidden_dim":                 128,
	},
}

// Presets lists names of known experiment presets
func Presets() []string {
	r := make([]string, 0, len(presets))
	for k := range presets {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Preset returns a copy of named experiment parameters
func Preset(name string) (Params, error) {
	p, ok := presets[name]
	if !ok {
		return nil, xerrors.Errorf("unknown preset %q: %w", name, model.ErrInvalidConfiguration)
	}
	q := Params{}
	for k, v := range p {
		q[k] = v
	}
	return q, nil
}
