package criteria

import (
	"github.com/viant/boque/service/dao"
)

// StateParameter names the parameter FilterByState matches against
const StateParameter = "State"

// FilterByState returns true when state matches the State parameter, or no
// State parameter was supplied.
func FilterByState(state string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != StateParameter {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			return state == actual
		case []string:
			for _, s := range actual {
				if state == s {
					return true
				}
			}
			return false
		}
	}
	return true
}
