// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package mood

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String(), time.UTC)
			return err == nil
		})
	})
	return validate
}

// ParseDate parses an ISO-8601 timestamp. Zone-less values are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for i, layout := range dateLayouts {
		var t time.Time
		var err error
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FormatDate renders t the way the mobile app did (UTC, millisecond precision)
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Validate checks an entry against the closed enums and ranges
func Validate(e *Entry) error {
	if err := validatorInstance().Struct(e); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}
	return nil
}

// ValidateMedication checks a configured medication
func ValidateMedication(m *ConfiguredMedication) error {
	if err := validatorInstance().Struct(m); err != nil {
		return fmt.Errorf("invalid medication: %w", err)
	}
	return nil
}
