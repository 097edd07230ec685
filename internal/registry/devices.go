package registry

import (
	_ "github.com/padkit/padkit/device/maschinemikro" // Register Maschine Mikro driver
)
