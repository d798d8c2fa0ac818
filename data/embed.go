// Package data carries the embedded demo seed collections.
package data

import (
	_ "embed"
)

//go:embed seed/properties.json
var PropertiesSeed []byte

//go:embed seed/units.json
var UnitsSeed []byte

//go:embed seed/users.json
var UsersSeed []byte
