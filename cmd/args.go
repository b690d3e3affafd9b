package cmd

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/mattismoel/trainingcal/plan"
	"github.com/mattismoel/trainingcal/types"
	"github.com/spf13/pflag"
)

// ArgumentError reports malformed or conflicting command line input.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

func argErrorf(format string, a ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, a...)}
}

// onceString is a string flag that remembers how many times it was set, so
// a repeated flag can be reported instead of silently taking the last value.
type onceString struct {
	value string
	count int
}

func (s *onceString) String() string { return s.value }

func (s *onceString) Set(v string) error {
	s.value = v
	s.count++
	return nil
}

func (s *onceString) Type() string { return "string" }

func (s *onceString) set() bool { return s.count > 0 }

// createArgs is the resolved input of the create command.
type createArgs struct {
	Name             string
	RaceDay          civil.Date
	File             string
	TemplateCalendar string
	Tag              string
	ColumnMap        plan.ColumnMap
	ColumnMapGiven   bool
	EndsOnRaceDay    bool
	DryRun           bool
}

type createFlags struct {
	name             onceString
	raceDay          onceString
	file             onceString
	templateCalendar onceString
	tag              string
	columnMap        string
	endsOnRaceDay    bool
	dryRun           bool
}

var flagAliases = map[string]string{
	"what-if":                "dry-run",
	"template-calendar-name": "template-calendar",
}

func (f *createFlags) register(fs *pflag.FlagSet) {
	fs.VarP(&f.name, "name", "n", "name of the calendar to create or reuse")
	fs.VarP(&f.raceDay, "race-day", "r", "date of the race, YYYY-MM-DD")
	fs.VarP(&f.file, "file", "f", "training plan table: .csv, .tsv, .html or an http(s) URL")
	fs.VarP(&f.templateCalendar, "template-calendar", "c", "existing calendar to use as the template")
	fs.StringVarP(&f.tag, "tag", "t", "", "tag stored on every created event")
	fs.StringVarP(&f.columnMap, "column-map", "m", "", "rename table columns, col:prop[,col:prop...]")
	fs.BoolVar(&f.endsOnRaceDay, "ends-on-race-day", false, "treat the last event as race day instead of looking for a RACE DAY event")
	fs.BoolVar(&f.dryRun, "dry-run", false, "log what would be created without changing anything (alias --what-if)")
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := flagAliases[name]; ok {
			name = alias
		}
		return pflag.NormalizedName(name)
	})
}

// resolve validates the parsed flags and fills name and race day from the
// positional arguments. The first positional is the name unless --name was
// given, in which case it is the race day.
func (f *createFlags) resolve(positional []string) (createArgs, error) {
	var args createArgs

	switch {
	case f.name.count > 1:
		return args, argErrorf("--name already specified")
	case f.raceDay.count > 1:
		return args, argErrorf("--race-day already specified")
	case f.file.count > 1:
		return args, argErrorf("--file already specified")
	case f.templateCalendar.count > 1:
		return args, argErrorf("--template-calendar already specified")
	case f.file.set() && f.templateCalendar.set():
		return args, argErrorf("exactly one of --file or --template-calendar required (got both)")
	}

	name, nameSet := f.name.value, f.name.set()
	raceDay, raceDaySet := f.raceDay.value, f.raceDay.set()
	for i, arg := range positional {
		switch {
		case !nameSet:
			name, nameSet = arg, true
		case !raceDaySet:
			raceDay, raceDaySet = arg, true
		case i == 1 && f.raceDay.set() && !f.name.set():
			return args, argErrorf("--race-day already specified")
		default:
			return args, argErrorf("too many positional arguments (--name & --race-day already specified): %q", arg)
		}
	}

	if !nameSet || strings.TrimSpace(name) == "" {
		return args, argErrorf("missing required argument: --name")
	}
	if !raceDaySet {
		return args, argErrorf("missing required argument: --race-day")
	}
	if !f.file.set() && !f.templateCalendar.set() {
		return args, argErrorf("exactly one of --file or --template-calendar required (got neither)")
	}

	date, err := types.ParseDate(raceDay)
	if err != nil {
		return args, &ArgumentError{Msg: fmt.Sprintf("--race-day: %v", err)}
	}
	columnMap, err := plan.ParseColumnMap(f.columnMap)
	if err != nil {
		return args, &ArgumentError{Msg: fmt.Sprintf("--column-map: %v", err)}
	}

	return createArgs{
		Name:             name,
		RaceDay:          date,
		File:             f.file.value,
		TemplateCalendar: f.templateCalendar.value,
		Tag:              f.tag,
		ColumnMap:        columnMap,
		ColumnMapGiven:   f.columnMap != "",
		EndsOnRaceDay:    f.endsOnRaceDay,
		DryRun:           f.dryRun,
	}, nil
}

// wantsHelp reports whether a positional argument asks for usage.
func wantsHelp(positional []string) bool {
	for _, p := range positional {
		if p == "help" || p == "?" {
			return true
		}
	}
	return false
}
