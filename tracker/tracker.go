/*
Package tracker collects scalar metrics logged by the trainer under named sections
*/
package tracker

import (
	"sort"

	"k8s.io/klog/v2"
)

/*
Tracker is a sink for scalar records
*/
type Tracker interface {
	Log(section string, step int, scalars map[string]float64) error
}

func keys(scalars map[string]float64) []string {
	ks := make([]string, 0, len(scalars))
	for k := range scalars {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

/*
Klog writes records as structured log lines at the given verbosity
*/
type Klog struct {
	Verbosity klog.Level
}

func (k Klog) Log(section string, step int, scalars map[string]float64) error {
	kv := []interface{}{"section", section, "step", step}
	for _, n := range keys(scalars) {
		kv = append(kv, n, scalars[n])
	}
	klog.V(k.Verbosity).InfoS("scalars", kv...)
	return nil
}

/*
Record is a logged set of scalars
*/
type Record struct {
	Section string
	Step    int
	Scalars map[string]float64
}

/*
Memory keeps all records in the order of logging
*/
type Memory struct {
	Records []Record
}

func (m *Memory) Log(section string, step int, scalars map[string]float64) error {
	c := make(map[string]float64, len(scalars))
	for k, v := range scalars {
		c[k] = v
	}
	m.Records = append(m.Records, Record{section, step, c})
	return nil
}

// Section returns records logged under the section
func (m *Memory) Section(section string) []Record {
	r := []Record{}
	for _, x := range m.Records {
		if x.Section == section {
			r = append(r, x)
		}
	}
	return r
}

type multi []Tracker

func (m multi) Log(section string, step int, scalars map[string]float64) error {
	for _, t := range m {
		if err := t.Log(section, step, scalars); err != nil {
			return err
		}
	}
	return nil
}

// Multi logs every record to all trackers, stops at the first error
func Multi(ts ...Tracker) Tracker {
	return multi(ts)
}
