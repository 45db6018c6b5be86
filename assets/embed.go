// assets/embed.go
//
// Files compiled into the binary: SQL migrations and the default scenario.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql scenarios/*.yaml
var FS embed.FS

// DefaultScenarioName is the scenario used when SCENARIO_FILE is unset.
const DefaultScenarioName = "cape_python"

// Migrations returns the migrations directory as its own root.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "migrations")
}

// Scenario reads an embedded scenario by name (without extension).
func Scenario(name string) ([]byte, error) {
	return FS.ReadFile("scenarios/" + name + ".yaml")
}
