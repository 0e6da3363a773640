package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/estateadmin/internal/core"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200

	// maxJSONBody caps JSON request bodies.
	maxJSONBody = 1 << 20

	// summaryFailures is how many failures the HTMX import summary lists.
	summaryFailures = 20
)

// parseIntParam parses a positive integer query parameter, falling back to
// defaultVal and capping at maxVal.
func parseIntParam(r *http.Request, name string, defaultVal, maxVal int) int {
	i, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || i < 1 {
		return defaultVal
	}
	return min(i, maxVal)
}

type fieldView struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	EnumValues []string `json:"enumValues,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
	Example    string   `json:"example,omitempty"`
}

type entityView struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Group  string      `json:"group"`
	Fields []fieldView `json:"fields"`
}

func newEntityView(def core.EntityDefinition) entityView {
	v := entityView{
		Key:    def.Info.Key,
		Label:  def.Info.Label,
		Group:  def.Info.Group,
		Fields: make([]fieldView, len(def.Fields)),
	}
	for i, f := range def.Fields {
		v.Fields[i] = fieldView{
			Name:       f.Name,
			Type:       f.Type.String(),
			Required:   f.Required,
			EnumValues: f.EnumValues,
			Aliases:    f.Aliases,
			Example:    f.Example,
		}
	}
	return v
}

type profileView struct {
	Name                string        `json:"name"`
	Delimiter           string        `json:"delimiter"`
	DecimalSeparator    string        `json:"decimalSeparator"`
	Encoding            core.Encoding `json:"encoding"`
	SkipHeader          bool          `json:"skipHeader"`
	TrimWhitespace      bool          `json:"trimWhitespace"`
	SkipEmptyRows       bool          `json:"skipEmptyRows"`
	BatchSize           int           `json:"batchSize"`
	AutoDetectDelimiter bool          `json:"autoDetectDelimiter"`
}

func newProfileView(p core.ImportProfile) profileView {
	return profileView{
		Name:                p.Name,
		Delimiter:           p.DelimiterName(),
		DecimalSeparator:    string(p.DecimalSeparator),
		Encoding:            p.Encoding,
		SkipHeader:          p.SkipHeader,
		TrimWhitespace:      p.TrimWhitespace,
		SkipEmptyRows:       p.SkipEmptyRows,
		BatchSize:           p.BatchSize,
		AutoDetectDelimiter: p.AutoDetectDelimiter,
	}
}
