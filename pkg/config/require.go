package config

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// CheckRequired reports every empty entry of values, keyed by env name.
func CheckRequired(values map[string]string) error {
	var missing []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
}

func MustRequire(values map[string]string) {
	if err := CheckRequired(values); err != nil {
		log.Fatal(err)
	}
}
