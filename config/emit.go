package config

import (
	"path/filepath"
	"strings"
	"text/template"

	"github.com/golergka/pgtyped/errors"
)

// EmitData is the data passed to an emit template
type EmitData struct {
	Dir  string // directory of the source file
	Name string // base name without extension
	Ext  string // extension including the dot
	Base string // base name with extension
}

// OutputPath renders the transform's emit template for the source file at path
func (t Transform) OutputPath(path string) (string, error) {
	tmpl, err := template.New("emit").Option("missingkey=error").Parse(t.Template())
	if err != nil {
		return "", errors.Wrapf(err, "parse emit template for %s", t)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	data := EmitData{
		Dir:  filepath.ToSlash(filepath.Dir(path)),
		Name: strings.TrimSuffix(base, ext),
		Ext:  ext,
		Base: base,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrapf(err, "render emit template for %s", path)
	}
	out := filepath.Clean(filepath.FromSlash(sb.String()))
	if out == filepath.Clean(path) {
		return "", errors.Newf("emit template %q would overwrite its source %s", t.Template(), path)
	}
	return out, nil
}
