package dtos

import (
	"encoding/json"

	"dbupgrade-config-go/dtos/common"

	"github.com/samber/lo"
)

// FilterConfig narrows a list of tables or sequences down to the ones to replicate
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

func (f *FilterConfig) UnmarshalJSON(data []byte) error {
	type filterConfig FilterConfig
	data, err := common.ExactKeys(data, "include", "exclude")
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*filterConfig)(f))
}

// Apply evaluates the rule against items.
//
// Include keeps the items listed in it. Exclude is evaluated against the full
// input, not against the include result, so when both are set only the exclude
// outcome is returned. With neither set the result is empty.
func (f *FilterConfig) Apply(items []string) []string {
	filtered := []string{}
	if f == nil {
		return filtered
	}

	if f.Include != nil {
		filtered = lo.Filter(items, func(item string, _ int) bool {
			return lo.Contains(f.Include, item)
		})
	}

	if f.Exclude != nil {
		filtered = lo.Filter(items, func(item string, _ int) bool {
			return !lo.Contains(f.Exclude, item)
		})
	}

	return filtered
}
