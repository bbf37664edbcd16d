// Package pipeline defines the entry points and watch rules of the asset
// pipeline and runs them through the scheduler.
package pipeline

import (
	"path"
	"slices"
	"strings"

	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/zerr"
)

// Task unit names.
const (
	CleanDev           = "cleanDev"
	CleanDist          = "cleanDist"
	BuildFonts         = "buildFonts"
	BuildStyles        = "buildStyles"
	BuildScripts       = "buildScripts"
	BuildScriptsVendor = "buildScriptsVendor"
	BuildTemplates     = "buildTemplates"
	CopyAssets         = "copyAssets"
	Images             = "images"
	Browser            = "browser"
	Watch              = "watch"
	BrowserReload      = "browserReload"
	ZipBuild           = "zipBuild"
)

// Entry point names.
const (
	EntryDefault = "default"
	EntryBuild   = "build"
	EntryZip     = "zip"
)

var entryOrder = []string{EntryDefault, EntryBuild, EntryZip}

// Entries returns the composition of every entry point.
func Entries() map[string]domain.Step {
	return map[string]domain.Step{
		EntryDefault: domain.Series(
			domain.Unit(CleanDev),
			domain.Unit(BuildFonts),
			domain.Unit(BuildStyles),
			domain.Unit(BuildScripts),
			domain.Unit(BuildScriptsVendor),
			domain.Unit(BuildTemplates),
			domain.Unit(CopyAssets),
			domain.Parallel(domain.Unit(Browser), domain.Unit(Watch)),
		),
		EntryBuild: domain.Series(
			domain.Unit(CleanDist),
			domain.Unit(BuildFonts),
			domain.Unit(BuildStyles),
			domain.Unit(BuildScripts),
			domain.Unit(BuildScriptsVendor),
			domain.Unit(BuildTemplates),
			domain.Unit(CopyAssets),
			domain.Unit(Images),
		),
		EntryZip: domain.Series(
			domain.Unit(CleanDist),
			domain.Unit(CleanDev),
			domain.Unit(ZipBuild),
		),
	}
}

// EntryNames returns the entry point names in declaration order.
func EntryNames() []string {
	return slices.Clone(entryOrder)
}

// Entry returns the composition of the named entry point.
func Entry(name string) (domain.Step, error) {
	step, ok := Entries()[name]
	if !ok {
		err := zerr.With(domain.ErrEntryNotFound, "entry", name)
		return domain.Step{}, zerr.With(err, "available", strings.Join(entryOrder, ", "))
	}
	return step, nil
}

// Plan compiles the named entry point and returns its task names in
// execution order.
func Plan(name string) ([]string, error) {
	step, err := Entry(name)
	if err != nil {
		return nil, err
	}
	g, err := domain.Compile(name, step)
	if err != nil {
		return nil, err
	}
	tasks := make([]string, 0, g.TaskCount())
	for task := range g.Walk() {
		tasks = append(tasks, task.Name.String())
	}
	return tasks, nil
}

// Watch rule names.
const (
	RuleStyles    = "styles"
	RuleScripts   = "scripts"
	RuleVendor    = "vendor"
	RuleTemplates = "templates"
)

// WatchRules returns the watch rules over the source root of paths.
// When outputs land inside the source root, the generated files are
// excluded so a rebuild does not trigger itself.
func WatchRules(paths domain.PathSet) []domain.WatchRule {
	src := func(pattern string) string {
		return domain.CleanRel(path.Join(paths.Source, pattern))
	}

	rules := []domain.WatchRule{
		{
			Name:     RuleStyles,
			Patterns: []string{src("**/*.scss"), src("**/*.css")},
			Reaction: domain.Unit(BuildStyles),
		},
		{
			Name:     RuleScripts,
			Patterns: []string{src("assets/js/**/*.js")},
			Reaction: domain.Series(domain.Unit(BuildScripts), domain.Unit(BrowserReload)),
		},
		{
			Name:     RuleVendor,
			Patterns: []string{src("assets/vendor/**/*.js"), src(domain.VendorScriptEntry)},
			Reaction: domain.Series(domain.Unit(BuildScriptsVendor), domain.Unit(BrowserReload)),
		},
		{
			Name:     RuleTemplates,
			Patterns: []string{src("templates/**/*.html")},
			Reaction: domain.Series(domain.Unit(BuildTemplates), domain.Unit(BrowserReload)),
		},
	}

	if !paths.InPlace() {
		return rules
	}

	generated := []string{
		"!" + src(path.Join(domain.StyleOutputDir, "main.css")),
		"!" + src(path.Join(domain.StyleOutputDir, "main.min.css")),
		"!" + src(path.Join(domain.ScriptOutputDir, "*.min.js")),
	}
	for i := range rules {
		rules[i].Patterns = append(rules[i].Patterns, generated...)
	}
	return rules
}
