package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Problem is one shape defect found by Check.
type Problem struct {
	Field   string
	Message string
}

func (p Problem) String() string {
	return p.Field + ": " + p.Message
}

// Summary counts what a well-formed document holds.
type Summary struct {
	Version    string
	ExportDate string
	Groups     int
	Sites      int
	Configs    int
}

// Check verifies that raw is JSON with the fields an import expects. It
// returns the counts it could read alongside every problem found.
func Check(raw []byte) (Summary, []Problem) {
	var sum Summary
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return sum, []Problem{{Field: "document", Message: fmt.Sprintf("invalid JSON at offset %d: %v", syntax.Offset, err)}}
		}
		return sum, []Problem{{Field: "document", Message: err.Error()}}
	}

	var problems []Problem
	missing := func(field, want string) {
		problems = append(problems, Problem{Field: field, Message: "missing or not " + want})
	}

	if err := decodeField(fields, "version", &sum.Version); err != nil || sum.Version == "" {
		missing("version", "a string")
	}
	if err := decodeField(fields, "exportDate", &sum.ExportDate); err != nil || sum.ExportDate == "" {
		missing("exportDate", "a string")
	}

	var groups, sites []json.RawMessage
	if err := decodeField(fields, "groups", &groups); err != nil || groups == nil {
		missing("groups", "an array")
	}
	if err := decodeField(fields, "sites", &sites); err != nil || sites == nil {
		missing("sites", "an array")
	}
	var configs map[string]json.RawMessage
	if err := decodeField(fields, "configs", &configs); err != nil || configs == nil {
		missing("configs", "an object")
	}

	sum.Groups = len(groups)
	sum.Sites = len(sites)
	sum.Configs = len(configs)
	return sum, problems
}

func decodeField(fields map[string]json.RawMessage, name string, v any) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("%s missing", name)
	}
	return json.Unmarshal(raw, v)
}
