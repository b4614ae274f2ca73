package competition

import "strings"

type requirement struct {
	required []string
	oneOf    []string
}

var requirements = map[Type]requirement{
	Streaks: {required: []string{"goal", "unit", "interval"}},
	Apex:    {required: []string{"unit"}, oneOf: []string{"end_date", "duration_hours"}},
	Clash:   {required: []string{"unit", "interval"}, oneOf: []string{"first_to", "end_date", "duration_hours"}},
	Targets: {required: []string{"goal", "unit", "interval"}, oneOf: []string{"first_to", "end_date", "duration_hours"}},
	Race:    {required: []string{"goal", "unit"}},
}

// Validate checks c has every option its type requires. All violations are
// collected into a single *ConfigurationError.
func Validate(c *Competition) error {
	var fields []string

	if strings.TrimSpace(c.OwnerID) == "" {
		fields = append(fields, "owner_id")
	}
	if len(c.ActivityTypes) == 0 {
		fields = append(fields, "activity_types")
	}

	req, ok := requirements[c.Type]
	if !ok {
		fields = append(fields, "type")
		return &ConfigurationError{Fields: fields}
	}

	for _, key := range req.required {
		if !c.has(key) {
			fields = append(fields, key)
		}
	}

	if len(req.oneOf) > 0 {
		found := false
		for _, key := range req.oneOf {
			if c.has(key) {
				found = true
				break
			}
		}
		if !found {
			fields = append(fields, strings.Join(req.oneOf, " or "))
		}
	}

	if c.Options.Lives != nil && *c.Options.Lives < 1 {
		fields = append(fields, "lives")
	}
	if c.Options.FirstTo != nil && *c.Options.FirstTo < 1 {
		fields = append(fields, "first_to")
	}
	if c.StartDate != nil && c.EndDate != nil && !c.EndDate.After(*c.StartDate) {
		fields = append(fields, "end_date")
	}

	if len(fields) > 0 {
		return &ConfigurationError{Fields: fields}
	}
	return nil
}

// has reports whether the named option is present and holds a usable value.
func (c *Competition) has(key string) bool {
	o := c.Options
	switch key {
	case "goal":
		return o.Goal != nil && *o.Goal > 0
	case "unit":
		return o.Unit.Valid()
	case "interval":
		return o.Interval.Valid()
	case "first_to":
		return o.FirstTo != nil && *o.FirstTo > 0
	case "end_date":
		return c.EndDate != nil
	case "duration_hours":
		return o.DurationHours != nil && *o.DurationHours > 0
	}
	return false
}
