// Package fields defines the field set exchanged with the editing
// collaborator and its debug dump formats.
package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Field names, as seen by editors and in dumps
const (
	KeyOrigLink           = "origlink"
	KeyOrigReadlink       = "origreadlink"
	KeyTargetRef          = "targetref"
	KeySuggestionAbspath  = "suggestion-abspath"
	KeySuggestionRelpath  = "suggestion-relpath"
	KeySuggestionUserroot = "suggestion-userroot"
	KeyAllowBroken        = "allowbroken"
	KeySaveBackup         = "savebackup"
	KeyDeleteOrig         = "deleteorig"
)

// Set is the editable view of one link. Editors receive a Set filled with
// defaults and hand back a finalized copy; they never share live state.
type Set struct {
	OrigLink           string `json:"origlink" yaml:"origlink" toml:"origlink"`
	OrigReadlink       string `json:"origreadlink" yaml:"origreadlink" toml:"origreadlink"`
	TargetRef          string `json:"targetref" yaml:"targetref" toml:"targetref"`
	SuggestionAbspath  string `json:"suggestion-abspath" yaml:"suggestion-abspath" toml:"suggestion-abspath"`
	SuggestionRelpath  string `json:"suggestion-relpath" yaml:"suggestion-relpath" toml:"suggestion-relpath"`
	SuggestionUserroot string `json:"suggestion-userroot" yaml:"suggestion-userroot" toml:"suggestion-userroot"`
	AllowBroken        bool   `json:"allowbroken" yaml:"allowbroken" toml:"allowbroken"`
	SaveBackup         bool   `json:"savebackup" yaml:"savebackup" toml:"savebackup"`
	DeleteOrig         bool   `json:"deleteorig" yaml:"deleteorig" toml:"deleteorig"`
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	c := *s
	return &c
}

// Suggestions returns the distinct non-empty target candidates, starting
// with the stored value
func (s *Set) Suggestions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range []string{s.TargetRef, s.SuggestionAbspath, s.SuggestionRelpath, s.SuggestionUserroot} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Plan converts a finalized set into a replacement plan for origin
func (s *Set) Plan(origin string) (*types.ReplacementPlan, error) {
	name := strings.TrimSpace(s.OrigLink)
	target := strings.TrimSpace(s.TargetRef)
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "link name is empty").
			WithDetail("field", KeyOrigLink)
	}
	if target == "" {
		return nil, errors.New(errors.ErrInvalidInput, "target value is empty").
			WithDetail("field", KeyTargetRef)
	}
	return &types.ReplacementPlan{
		OriginLink:   origin,
		NewLinkName:  name,
		NewTarget:    target,
		AllowBroken:  s.AllowBroken,
		SaveBackup:   s.SaveBackup,
		RemoveOrigin: s.DeleteOrig,
	}, nil
}

// Format selects the debug dump encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown dump format %q (want json, yaml or toml)", name).
		WithDetail("format", name)
}

// Dump writes the session's field set: the finalized one when the editor
// produced a result, the original defaults when it was cancelled (updated
// is nil).
func Dump(w io.Writer, format Format, original, updated *Set) error {
	s := updated
	if s == nil {
		s = original
	}

	data, err := Encode(format, s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode renders a set in the given format, terminated by a newline
func Encode(format Format, s *Set) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON, "":
		data, err = json.MarshalIndent(s, "", "    ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(s); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case FormatTOML:
		data, err = toml.Marshal(s)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown dump format %q", format)
	}

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, fmt.Sprintf("failed to encode fields as %s", format))
	}
	return data, nil
}
