// Package embedded provides access to data files compiled into the Devion binary.
package embedded

import _ "embed"

// CommandCatalogData contains the embedded command help catalog YAML data.
//
//go:embed commands.yaml
var CommandCatalogData []byte
