package content

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Embedded is the seed content shipped with the binary.
//
//go:embed data/*.yaml
var Embedded embed.FS

// File names read by Load. Only site.yaml is required.
const (
	SiteFile        = "site.yaml"
	PropertiesFile  = "properties.yaml"
	ActivitiesFile  = "activities.yaml"
	EventsFile      = "events.yaml"
	ComparisonsFile = "comparisons.yaml"
	BestOfFile      = "best-of.yaml"
	MonthsFile      = "months.yaml"
	LifestyleFile   = "lifestyle.yaml"
	PlacesFile      = "places.yaml"
)

// LoadDefault builds a snapshot from the embedded seed content.
func LoadDefault() (*Snapshot, error) {
	sub, err := fs.Sub(Embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir builds a snapshot from YAML files in dir.
func LoadDir(dir string) (*Snapshot, error) {
	return Load(os.DirFS(dir))
}

// Load decodes the content files in fsys and builds a validated snapshot.
func Load(fsys fs.FS) (*Snapshot, error) {
	var src Source
	if err := decodeFile(fsys, SiteFile, &src.Site, true); err != nil {
		return nil, err
	}
	files := []struct {
		name string
		dst  any
	}{
		{PropertiesFile, &src.Properties},
		{ActivitiesFile, &src.Activities},
		{EventsFile, &src.Events},
		{ComparisonsFile, &src.Comparisons},
		{BestOfFile, &src.BestOf},
		{MonthsFile, &src.Months},
		{LifestyleFile, &src.Lifestyle},
		{PlacesFile, &src.Places},
	}
	var errs []error
	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.dst, false); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return Build(src)
}

func decodeFile(fsys fs.FS, name string, dst any, required bool) error {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
