package logutil

import (
	"fmt"
	"strings"
)

// Tag selects one component's detailed logging.
type Tag uint8

// Components with detailed logging.
const (
	TagModel Tag = iota
	TagCompilation
	TagExecution
	TagCPUExe
	TagManager
	TagDriver

	numTags
)

var tagNames = [numTags]string{
	TagModel:       "model",
	TagCompilation: "compilation",
	TagExecution:   "execution",
	TagCPUExe:      "cpuexe",
	TagManager:     "manager",
	TagDriver:      "driver",
}

func (t Tag) String() string {
	if t < numTags {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Tags is a bit mask of enabled Tag values.
type Tags uint32

// AllTags enables every component.
const AllTags = Tags(1<<numTags - 1)

// Has reports whether tag is enabled.
func (m Tags) Has(tag Tag) bool {
	return m&(1<<tag) != 0
}

// With returns m with tag enabled.
func (m Tags) With(tag Tag) Tags {
	return m | 1<<tag
}

func (m Tags) String() string {
	var names []string
	for t := range numTags {
		if m.Has(t) {
			names = append(names, t.String())
		}
	}
	return strings.Join(names, ",")
}

// ParseTags parses a list of component names separated by commas, colons or
// whitespace. "1" and "all" enable everything; an empty string enables
// nothing.
func ParseTags(s string) (Tags, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ':' || r == ' ' || r == '\t' || r == '\n'
	})

	var m Tags
	for _, f := range fields {
		f = strings.ToLower(f)
		if f == "1" || f == "all" {
			return AllTags, nil
		}

		found := false
		for t, name := range tagNames {
			if name == f {
				m = m.With(Tag(t))
				found = true
				break
			}
		}
		if !found {
			return m, fmt.Errorf("unknown log tag %q", f)
		}
	}
	return m, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Tags) UnmarshalText(text []byte) error {
	v, err := ParseTags(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Tags) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
